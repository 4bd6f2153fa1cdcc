// Package site writes the output tree. The directory is cleared and fully
// rewritten on every run, so consumers never see a partial mix of old and
// new artifacts.
package site

import (
	"os"
	"path/filepath"
	"sort"

	appLog "rexgen/internal/log"
)

// Write clears outDir, copies the static asset tree into it, then writes
// every artifact. Files are written via temp file + rename.
func Write(outDir, staticDir string, files map[string][]byte) error {
	if err := os.RemoveAll(outDir); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			if err := os.CopyFS(outDir, os.DirFS(staticDir)); err != nil {
				return err
			}
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(outDir, name)
		if err := writeFileAtomic(path, files[name], 0o644); err != nil {
			return err
		}
		appLog.Info("artifact written", "path", path, "bytes", len(files[name]))
	}

	return nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over the final path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".rexgen-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
