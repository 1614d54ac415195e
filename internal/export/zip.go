package export

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/bingocards/internal/fileutil"
)

// WriteZip compresses every regular file under dir into zipPath, using paths
// relative to dir. Entries are sorted and stamped with modTime so identical input
// gives an identical archive.
func WriteZip(dir, zipPath string, modTime time.Time) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}

	return fileutil.WriteAtomic(zipPath, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, path := range files {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			if err := addFile(zw, path, filepath.ToSlash(rel), modTime); err != nil {
				return fmt.Errorf("adding %s: %w", rel, err)
			}
		}
		return zw.Close()
	})
}

func addFile(zw *zip.Writer, path, name string, modTime time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modTime,
	}
	hdr.SetMode(0o644)
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	return err
}
