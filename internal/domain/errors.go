package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInvalidCache signals that an existing cache entry is not a valid
	// repository of the expected kind. It is never surfaced to callers;
	// the VCS fetch path reacts by clearing the entry and cloning fresh.
	ErrInvalidCache = errors.New("invalid cache entry")

	// ErrResumeNotSupported signals that the server refused a ranged
	// continuation of a partial download.
	ErrResumeNotSupported = errors.New("resume not supported")

	// ErrNoCredentials signals that ambient credentials for a signed-URL
	// download could not be obtained.
	ErrNoCredentials = errors.New("no credentials available")

	// ErrEmptyArchive signals that an archive extracted to zero entries,
	// indicating a corrupt or wrong-format download.
	ErrEmptyArchive = errors.New("empty archive")
)

// ConfigurationError indicates an unresolvable or invalid strategy
// specification. It is fatal and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// DownloadError indicates a download failed after all recovery rules
// (resume retry, mirror fallback) were exhausted. It names the original
// URL, not the last mirror tried.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download resource from %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewDownloadError creates a new DownloadError
func NewDownloadError(url string, err error) *DownloadError {
	return &DownloadError{URL: url, Err: err}
}

// EmptyArchiveError reports an archive that extracted to zero entries.
type EmptyArchiveError struct {
	Path string
}

func (e *EmptyArchiveError) Error() string {
	return fmt.Sprintf("archive %s contained no files", e.Path)
}

func (e *EmptyArchiveError) Unwrap() error {
	return ErrEmptyArchive
}

// NewEmptyArchiveError creates a new EmptyArchiveError
func NewEmptyArchiveError(path string) *EmptyArchiveError {
	return &EmptyArchiveError{Path: path}
}
