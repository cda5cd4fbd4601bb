package download

import (
	stderrors "errors"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/glorpus-work/multifetch/pkg/fsutil"
)

// DefaultFileName is used when the URI path has no final segment.
const DefaultFileName = "index.html"

// Resolve picks the local path for uri inside destDir. A ledger hit wins and
// is returned as stored, even if the file has since been removed. Otherwise
// the URI's base name is used, suffixed with _1, _2, ... until it does not
// collide with an existing file. Resolve never writes anything.
func Resolve(uri, destDir string, ledger Lookuper) string {
	if ledger != nil {
		if localPath, ok := ledger.Lookup(uri, destDir); ok {
			return localPath
		}
	}
	return fsutil.UniquePath(destDir, FileName(uri))
}

// Reserve is Resolve for concurrent workers. Without a ledger hit it claims
// the chosen name by creating it empty with O_EXCL and moves on to the next
// suffix when another worker got there first. If destDir cannot be written
// the unclaimed name is returned and the download attempt reports the error.
func Reserve(uri, destDir string, ledger Lookuper) string {
	if ledger != nil {
		if localPath, ok := ledger.Lookup(uri, destDir); ok {
			return localPath
		}
	}

	name := FileName(uri)
	if err := fsutil.EnsureDir(destDir); err != nil {
		return fsutil.UniquePath(destDir, name)
	}
	for {
		candidate := fsutil.UniquePath(destDir, name)
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fsutil.FileModeDefault)
		if err == nil {
			_ = f.Close()
			return candidate
		}
		if !stderrors.Is(err, fs.ErrExist) {
			return candidate
		}
	}
}

// FileName returns the last path segment of uri.
func FileName(uri string) string {
	p := uri
	if u, err := url.Parse(uri); err == nil {
		p = u.Path
	}
	name := p[strings.LastIndex(p, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return DefaultFileName
	}
	return name
}
