package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/JdotSiv/homebrew/internal/domain"
)

// apacheMirrorDoc is the JSON document served by the Apache mirror-closer
// endpoint describing the best mirror for the caller.
type apacheMirrorDoc struct {
	Preferred string `json:"preferred"`
	PathInfo  string `json:"path_info"`
}

// NewApacheMirrorStrategy creates a strategy for Apache mirror-closer
// URLs. The closer endpoint is queried for the preferred mirror and the
// download is delegated to the base HTTP fetch against it.
func NewApacheMirrorStrategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	s := NewHTTPStrategy(deps, res)
	s.name = "apache"
	s.resolveURL = func(ctx context.Context, url string) (string, error) {
		lookup := url
		sep := "?"
		if strings.ContainsRune(lookup, '?') {
			sep = "&"
		}
		lookup += sep + "asjson=1"

		var doc apacheMirrorDoc
		if err := deps.Client.GetJSON(ctx, lookup, &doc); err != nil {
			return "", domain.NewDownloadError(url,
				fmt.Errorf("couldn't determine mirror, try again later: %w", err))
		}
		if doc.Preferred == "" || doc.PathInfo == "" {
			return "", domain.NewDownloadError(url,
				fmt.Errorf("couldn't determine mirror, try again later"))
		}
		return doc.Preferred + doc.PathInfo, nil
	}
	return s
}
