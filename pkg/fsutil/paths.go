package fsutil

import (
	"os"
	"strconv"
	"strings"
)

// JoinPath appends name to dir with a single separator and, unlike filepath.Join,
// keeps dir exactly as given ("./out" + "a.txt" is "./out/a.txt"). Paths built
// here are stored in the ledger, so they must round-trip unchanged.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if os.IsPathSeparator(dir[len(dir)-1]) {
		return dir + name
	}
	return dir + string(os.PathSeparator) + name
}

// SplitExt splits a file name into stem and extension. The extension starts at
// the last dot and includes it; a name whose only dot is leading has none.
//
//	SplitExt("a.tar.gz") == ("a.tar", ".gz")
//	SplitExt(".bashrc")  == (".bashrc", "")
func SplitExt(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || strings.Trim(name[:idx], ".") == "" {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// UniquePath returns dir/name if nothing exists there, otherwise the first free
// dir/stem_N.ext for N = 1, 2, ...
func UniquePath(dir, name string) string {
	candidate := JoinPath(dir, name)
	if !Exists(candidate) {
		return candidate
	}

	stem, ext := SplitExt(name)
	for counter := 1; ; counter++ {
		candidate = JoinPath(dir, stem+"_"+strconv.Itoa(counter)+ext)
		if !Exists(candidate) {
			return candidate
		}
	}
}
