package sink

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"tradebook/internal/trade"

	"github.com/spf13/afero"
)

// FileWriter writes message files below a root directory.
type FileWriter struct {
	fs   afero.Fs
	root string
}

// NewFileWriter uses fs (the OS filesystem when nil) rooted at dir.
func NewFileWriter(fs afero.Fs, dir string) *FileWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileWriter{fs: fs, root: strings.TrimSpace(dir)}
}

func (w *FileWriter) Write(ctx context.Context, path string, data []byte) error {
	dest := filepath.Join(w.root, filepath.Clean("/"+path))
	if err := ctx.Err(); err != nil {
		return &trade.IOError{Op: "write", Destination: dest, Err: err}
	}
	if err := w.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &trade.IOError{Op: "mkdir", Destination: filepath.Dir(dest), Err: err}
	}
	tmp := dest + ".tmp"
	if err := afero.WriteFile(w.fs, tmp, data, 0o644); err != nil {
		return &trade.IOError{Op: "write", Destination: dest, Err: err}
	}
	if err := w.fs.Rename(tmp, dest); err != nil {
		_ = w.fs.Remove(tmp)
		return &trade.IOError{Op: "rename", Destination: dest, Err: fmt.Errorf("%s: %w", filepath.Base(tmp), err)}
	}
	return nil
}
