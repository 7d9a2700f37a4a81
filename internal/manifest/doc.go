// Package manifest provides types and utilities for loading and validating
// resource manifest files. A manifest declares multiple resources to fetch
// and cache, enabling batch processing.
//
// # Manifest Format
//
// Manifests can be written in YAML or JSON format:
//
//	resources:
//	  - name: libfoo
//	    url: https://example.com/libfoo-1.2.tar.gz
//	    version: "1.2"
//	    mirrors:
//	      - https://mirror.example.org/libfoo-1.2.tar.gz
//	  - name: bar
//	    url: https://github.com/org/bar.git
//	    strategy: git
//	    specs:
//	      tag: v2.0.1
//	options:
//	  continue_on_error: true
//
// # Usage
//
// Load a manifest file:
//
//	loader := manifest.NewLoader()
//	cfg, err := loader.Load("resources.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, entry := range cfg.Resources {
//	    // Fetch each resource
//	}
package manifest
