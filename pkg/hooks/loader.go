package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/multifetch/pkg/errors"
)

// HookFileExtension is the extension of hook scripts in a hooks directory.
const HookFileExtension = ".tengo"

// LoadHookFile registers the script at path as hookType.
func LoadHookFile(manager HookManager, hookType HookType, path string) error {
	if !isSupported(hookType) {
		return ErrUnsupportedHookType(string(hookType))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "error reading hook file %s: %v", path, err)
	}
	return manager.AddHook(Hook{Type: hookType, Content: string(content)})
}

// LoadHooksFromDir loads <dir>/post-download.tengo and <dir>/download-failed.tengo
// when present. Other files are ignored.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "failed to read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !isSupported(hookType) {
			continue
		}

		if err := LoadHookFile(manager, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func isSupported(hookType HookType) bool {
	return hookType == PostDownload || hookType == DownloadFailed
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostDownload:
		return `// Post-download hook
// Runs after every successful download.
// Available variables:
// - uri: string - the downloaded URI
// - localPath: string - where the file was written
// - destDir: string - the destination directory
// - size: int - bytes written
// - attempts: int - attempts it took
//
// Set err to a non-empty string to report a problem:
//
// text := import("text")
// if !text.has_suffix(localPath, ".csv") {
//     err := "unexpected file type: " + localPath
// }
`

	case DownloadFailed:
		return `// Download-failed hook
// Runs after a download ended in failure.
// Available variables: same as post-download, plus
// - errorMessage: string - why the download failed
//
// fmt := import("fmt")
// fmt.println("failed: ", uri, " ", errorMessage)
`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
