// Package archive extracts downloaded archives next to the downloaded file.
package archive

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/fsutil"
	"github.com/glorpus-work/multifetch/pkg/model"
)

// Manager extracts recognised archives after a successful download.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// AfterDownload extracts out.LocalPath into a sibling directory when it is an
// archive. Files that are not archives are left alone.
func (am *Manager) AfterDownload(ctx context.Context, out model.Outcome) error {
	if out.Status != model.StatusSucceeded {
		return nil
	}

	format, ok, err := am.Identify(ctx, out.LocalPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrArchiveExtract, out.LocalPath, err)
	}
	if !ok {
		return nil
	}

	destDir := TargetDir(out.LocalPath, format.Extension())
	fields := logger.Fields{"archive": out.LocalPath, "dest": destDir}
	logger.Debug("Extracting archive", fields)

	if err := am.ExtractAll(ctx, out.LocalPath, destDir); err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrArchiveExtract, out.LocalPath, err)
	}
	logger.Success("Extracted archive", fields)
	return nil
}

// Identify reports whether the file at path is an archive that can be extracted.
// Plain compressed files (a lone .gz) are not.
func (am *Manager) Identify(ctx context.Context, path string) (archives.Format, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	format, _, err := archives.Identify(ctx, filepath.Base(path), f)
	if stderrors.Is(err, archives.NoMatch) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if _, ok := format.(archives.Extractor); !ok {
		return nil, false, nil
	}
	return format, true, nil
}

// TargetDir names the extraction directory: the archive's path without the
// archive extension, made unique with _1, _2, ... when already taken.
func TargetDir(archivePath, extension string) string {
	dir, name := filepath.Split(archivePath)

	base := name
	if extension != "" && len(name) > len(extension) && strings.EqualFold(name[len(name)-len(extension):], extension) {
		base = name[:len(name)-len(extension)]
	} else if stem, ext := fsutil.SplitExt(name); ext != "" {
		base = stem
	}
	if base == name {
		base = name + "_extracted"
	}

	return fsutil.UniquePath(dir, base)
}

// ExtractAll extracts all files from an archive to the specified destination directory
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := os.MkdirAll(destDir, fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return am.extractEntry(fsys, path, destDir, d)
	}

	return fs.WalkDir(fsys, ".", walkFn)
}

// extractEntry processes a single archive entry and writes it to destDir.
func (am *Manager) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry) error {
	if path == "." {
		return nil
	}

	targetPath := filepath.Join(destDir, filepath.FromSlash(path))
	if rel, err := filepath.Rel(destDir, targetPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("%w: entry %s escapes %s", errors.ErrInvalidPath, path, destDir)
	}

	if d.IsDir() {
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info for %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return am.writeSymlink(info, path, targetPath)
	}

	return am.writeRegularFile(fsys, path, targetPath, info)
}

// writeSymlink recreates a symlink entry. Links that are absolute or climb out
// of the extraction directory are skipped.
func (am *Manager) writeSymlink(info fs.FileInfo, path, targetPath string) error {
	fi, ok := info.(archives.FileInfo)
	if !ok || fi.LinkTarget == "" || filepath.IsAbs(fi.LinkTarget) || strings.HasPrefix(filepath.Clean(fi.LinkTarget), "..") {
		logger.Warn("Skipping symlink in archive", logger.Fields{"entry": path})
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for symlink %s: %w", path, err)
	}
	_ = os.Remove(targetPath)

	return os.Symlink(fi.LinkTarget, targetPath)
}

// writeRegularFile writes a regular file from the archive entry to targetPath and preserves metadata.
func (am *Manager) writeRegularFile(fsys fs.FS, path, targetPath string, info fs.FileInfo) error {
	srcFile, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	perm := info.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	dstFile, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file %s: %w", path, err)
	}

	if err := os.Chtimes(targetPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time for %s: %w", targetPath, err)
	}
	return nil
}
