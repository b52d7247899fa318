// Package fsutil holds the directory tree helpers used to duplicate datasets.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
)

// copyOptions keeps file modes and recreates symlinks instead of following them.
var copyOptions = copy.Options{
	OnSymlink: func(string) copy.SymlinkAction { return copy.Shallow },
	OnDirExists: func(_, _ string) copy.DirExistsAction {
		return copy.Untouchable
	},
	PermissionControl: copy.PerservePermission,
}

// CopyDir recursively copies the directory src to dst, which must not exist.
// File modes are preserved and symlinks are recreated, not followed.
func CopyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}
	if within(src, dst) {
		return fmt.Errorf("cannot copy %s into itself (%s)", src, dst)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%s already exists: %w", dst, fs.ErrExist)
	}
	if err := copy.Copy(src, dst, copyOptions); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// ReplaceDir removes dst if present and copies src to it.
func ReplaceDir(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("remove %s: %w", dst, err)
	}
	return CopyDir(src, dst)
}

func within(parent, child string) bool {
	p, err1 := filepath.Abs(parent)
	c, err2 := filepath.Abs(child)
	if err1 != nil || err2 != nil {
		return false
	}
	return c == p || strings.HasPrefix(c, p+string(filepath.Separator))
}
