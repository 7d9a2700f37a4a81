package tools

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// searchPrefixes is the ordered list of well-known install prefixes
// consulted before falling back to PATH lookup.
var searchPrefixes = []string{
	"/usr/local/bin",
	"/opt/homebrew/bin",
	"/opt/local/bin",
	"/usr/bin",
	"/bin",
}

var (
	locateMu    sync.Mutex
	locateCache = make(map[string]string)
)

// Locate finds the executable for the named tool. It consults a fixed
// ordered list of install prefixes first and falls back to a PATH search.
// Results are memoized per process; "" means the tool is not available.
func Locate(name string) string {
	locateMu.Lock()
	defer locateMu.Unlock()

	if path, ok := locateCache[name]; ok {
		return path
	}

	path := locate(name)
	locateCache[name] = path
	return path
}

func locate(name string) string {
	for _, prefix := range searchPrefixes {
		candidate := filepath.Join(prefix, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return ""
}

// MustLocate finds a tool or returns a descriptive error naming it.
func MustLocate(name string) (string, error) {
	if path := Locate(name); path != "" {
		return path, nil
	}
	return "", &NotFoundError{Tool: name}
}
