package unpack

import (
	"compress/bzip2"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// Stage materializes a cached archive file into dest and returns the
// effective build directory: when a multi-file archive wraps everything in
// a single top-level directory, that directory is returned instead of
// dest. A multi-file archive that extracts to nothing is fatal.
func Stage(ctx context.Context, runner *tools.Runner, cached, dest string) (string, error) {
	if err := utils.EnsureDir(dest); err != nil {
		return "", err
	}

	typ := DetectType(cached)
	switch typ {
	case TypeZip:
		if err := runner.Run(ctx, tools.Command{Tool: "unzip", Args: []string{"-qq", cached, "-d", dest}}); err != nil {
			return "", err
		}
	case TypeTar:
		if err := runner.Run(ctx, tools.Command{Tool: "tar", Args: []string{"xf", cached, "-C", dest}}); err != nil {
			return "", err
		}
	case TypeXz:
		if err := runner.Pipe(ctx,
			tools.Command{Tool: "xz", Args: []string{"-dc", cached}},
			tools.Command{Tool: "tar", Args: []string{"xf", "-", "-C", dest}},
		); err != nil {
			return "", err
		}
	case TypeLzip:
		if err := runner.Pipe(ctx,
			tools.Command{Tool: "lzip", Args: []string{"-dc", cached}},
			tools.Command{Tool: "tar", Args: []string{"xf", "-", "-C", dest}},
		); err != nil {
			return "", err
		}
	case TypeXar:
		if err := runner.Run(ctx, tools.Command{Tool: "xar", Args: []string{"-xf", cached}, Dir: dest}); err != nil {
			return "", err
		}
	case TypeRar:
		if err := runner.Run(ctx, tools.Command{Tool: "unrar", Args: []string{"x", "-inul", cached, dest + string(os.PathSeparator)}}); err != nil {
			return "", err
		}
	case TypeSevenZip:
		if err := runner.Run(ctx, tools.Command{Tool: "7zr", Args: []string{"x", "-y", "-o" + dest, cached}}); err != nil {
			return "", err
		}
	case TypeGzipOnly:
		return dest, gunzipTo(cached, dest)
	case TypeBzip2Only:
		return dest, bunzip2To(cached, dest)
	default:
		// Unknown type: copy the cached file verbatim under its basename.
		return dest, utils.CopyFile(cached, filepath.Join(dest, strippedBasename(cached, "")))
	}

	return descendSoleEntry(cached, dest)
}

// descendSoleEntry applies the "archive wraps everything in one top
// directory" convention after a multi-file extraction.
func descendSoleEntry(cached, dest string) (string, error) {
	entries, err := utils.ListDir(dest)
	if err != nil {
		return "", err
	}

	switch len(entries) {
	case 0:
		return "", domain.NewEmptyArchiveError(cached)
	case 1:
		sole := filepath.Join(dest, entries[0])
		if utils.IsDir(sole) {
			return sole, nil
		}
		return dest, nil
	default:
		return dest, nil
	}
}

// gunzipTo decompresses a single gzip-compressed file (not a tarball) into
// dest, named after the input with its compression extension stripped.
// Decompressing in-process gives explicit control over the output path;
// the gunzip tool writes next to its input regardless of working directory.
func gunzipTo(cached, dest string) error {
	in, err := os.Open(cached)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	return writeDecompressed(zr, filepath.Join(dest, strippedBasename(cached, ".gz")))
}

// bunzip2To decompresses a single bzip2-compressed file into dest.
func bunzip2To(cached, dest string) error {
	in, err := os.Open(cached)
	if err != nil {
		return err
	}
	defer in.Close()

	return writeDecompressed(bzip2.NewReader(in), filepath.Join(dest, strippedBasename(cached, ".bz2")))
}

func writeDecompressed(r io.Reader, target string) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// strippedBasename returns the basename of path with any query-string
// suffix discarded and the given compression extension removed.
func strippedBasename(path, ext string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	if ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
