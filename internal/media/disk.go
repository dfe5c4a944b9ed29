package media

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
)

// Disk stores assets as files under a single directory. Writes go through a
// temp file and an atomic rename so a crash never leaves a partial asset
// behind a valid reference.
type Disk struct {
	dir     string
	maxSize int64
}

// NewDisk creates the data directory if needed and returns a disk store.
// maxSize caps a single asset in bytes; 0 means unlimited.
func NewDisk(dir string, maxSize int64) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("media dir %s: %w", dir, err)
	}
	return &Disk{dir: dir, maxSize: maxSize}, nil
}

// Upload writes the asset to disk and returns its reference, a generated
// uuid plus the sanitized extension of the original filename.
func (d *Disk) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	ref := id.String() + safeExt(filename)
	full := filepath.Join(d.dir, ref)
	tmp := full + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}

	src := r
	if d.maxSize > 0 {
		src = io.LimitReader(r, d.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if err == nil && d.maxSize > 0 && n > d.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("fsync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename: %w", err)
	}
	return ref, nil
}

// Delete removes the asset file. A missing file is treated as success so
// repeated compensation stays idempotent.
func (d *Disk) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := d.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", ref, err)
	}
	return nil
}

// Open returns the asset content for serving. Callers must close the reader.
func (d *Disk) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := d.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

// path rejects references that would escape the data directory.
func (d *Disk) path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", fmt.Errorf("bad media reference %q", ref)
	}
	return filepath.Join(d.dir, ref), nil
}

// safeExt keeps only a short alphanumeric extension from the client filename.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
