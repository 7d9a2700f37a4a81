package utils

import (
	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescDownloading = "Downloading"
)

// NewDownloadBar creates a byte-count progress bar for a download.
//
// total is the expected size in bytes; use -1 when the server did not
// report a length (spinner mode). The returned bar implements io.Writer so
// it can sit in an io.MultiWriter alongside the destination file.
func NewDownloadBar(total int64, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	return progressbar.NewOptions64(total, opts...)
}
