package unpack

import (
	"bytes"
	"os"
	"strings"
)

// Type classifies a cached file for staging.
type Type int

const (
	// TypeUnknown means "copy verbatim"; no extractor is invoked.
	TypeUnknown Type = iota
	TypeZip
	// TypeTar covers everything the tar tool extracts natively:
	// gzip/bzip2/compress-wrapped and plain tar.
	TypeTar
	// TypeGzipOnly is a single gzip-compressed file, not a tarball.
	TypeGzipOnly
	// TypeBzip2Only is a single bzip2-compressed file, not a tarball.
	TypeBzip2Only
	TypeXz
	TypeLzip
	TypeXar
	TypeRar
	TypeSevenZip
)

// String returns the archive type name.
func (t Type) String() string {
	switch t {
	case TypeZip:
		return "zip"
	case TypeTar:
		return "tar"
	case TypeGzipOnly:
		return "gzip"
	case TypeBzip2Only:
		return "bzip2"
	case TypeXz:
		return "xz"
	case TypeLzip:
		return "lzip"
	case TypeXar:
		return "xar"
	case TypeRar:
		return "rar"
	case TypeSevenZip:
		return "7z"
	default:
		return "unknown"
	}
}

// DetectType classifies a cached file by extension first, then by content
// signature for files with uninformative names.
func DetectType(path string) Type {
	if t, ok := detectByName(path); ok {
		return t
	}
	return detectByMagic(path)
}

func detectByName(path string) (Type, bool) {
	lower := strings.ToLower(path)
	// Strip a query-string suffix left over from URL-derived names.
	if i := strings.IndexByte(lower, '?'); i >= 0 {
		lower = lower[:i]
	}

	switch {
	case hasSuffix(lower, ".zip", ".jar"):
		return TypeZip, true
	case hasSuffix(lower, ".tar.gz", ".tgz", ".tar.bz2", ".tbz", ".tbz2", ".tar.z", ".tar"):
		return TypeTar, true
	case hasSuffix(lower, ".tar.xz", ".txz", ".xz"):
		return TypeXz, true
	case hasSuffix(lower, ".tar.lz", ".lz", ".lzip"):
		return TypeLzip, true
	case hasSuffix(lower, ".gz"):
		return TypeGzipOnly, true
	case hasSuffix(lower, ".bz2"):
		return TypeBzip2Only, true
	case hasSuffix(lower, ".xar", ".pkg"):
		return TypeXar, true
	case hasSuffix(lower, ".rar"):
		return TypeRar, true
	case hasSuffix(lower, ".7z"):
		return TypeSevenZip, true
	}
	return TypeUnknown, false
}

// Magic numbers for archives whose names carry no useful extension.
var magicTable = []struct {
	offset int
	magic  []byte
	typ    Type
}{
	{0, []byte("PK\x03\x04"), TypeZip},
	{0, []byte("\xfd7zXZ\x00"), TypeXz},
	{0, []byte("LZIP"), TypeLzip},
	{0, []byte("Rar!"), TypeRar},
	{0, []byte("7z\xbc\xaf\x27\x1c"), TypeSevenZip},
	{0, []byte("xar!"), TypeXar},
	// Compressed streams with no extension are assumed to wrap a tarball.
	{0, []byte("\x1f\x8b"), TypeTar},
	{0, []byte("BZh"), TypeTar},
	{257, []byte("ustar"), TypeTar},
}

func detectByMagic(path string) Type {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown
	}
	defer f.Close()

	header := make([]byte, 262)
	n, _ := f.Read(header)
	header = header[:n]

	for _, entry := range magicTable {
		end := entry.offset + len(entry.magic)
		if len(header) >= end && bytes.Equal(header[entry.offset:end], entry.magic) {
			return entry.typ
		}
	}
	return TypeUnknown
}

func hasSuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
