package textfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/corpeningc/keepours/internal/conflict"
)

// ErrInvalidUTF8 is the cause carried by a DecodeError when the bytes were
// read fine but are not text.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// DecodeError means the file could not be turned into lines: either the
// read itself failed or the content is not UTF-8. Callers skip the file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot read %q as text: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

// File is a decoded text file.
type File struct {
	Path  string
	Lines []string
	Size  int64
	Mode  os.FileMode
}

// Read loads path fully and splits it into lines with terminators kept.
// Every failure comes back as *DecodeError.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if !utf8.Valid(b) {
		return nil, &DecodeError{Path: path, Err: ErrInvalidUTF8}
	}

	return &File{
		Path:  path,
		Lines: conflict.SplitLines(string(b)),
		Size:  int64(len(b)),
		Mode:  info.Mode().Perm(),
	}, nil
}

// Write overwrites path with lines joined as is. The content is staged in
// a temp file next to path first, so a full disk fails before path is
// touched; path is then truncated and refilled in place, keeping its
// permission bits and inode. When the directory is not writable the content
// goes straight into path. No backup is kept.
func Write(path string, lines []string) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return 0, err
	}
	body := strings.Join(lines, "")

	var src io.Reader = strings.NewReader(body)
	tmp, err := stage(filepath.Dir(path), body)
	switch {
	case err == nil:
		defer func() {
			tmp.Close()
			os.Remove(tmp.Name())
		}()
		src = tmp
	case !errors.Is(err, fs.ErrPermission):
		f.Close()
		return 0, fmt.Errorf("write %q: %w", path, err)
	}

	n, err := refill(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write %q: %w", path, err)
	}
	return n, nil
}

// stage writes body to a fresh temp file in dir and rewinds it.
func stage(dir, body string) (*os.File, error) {
	tmp, err := os.CreateTemp(dir, ".keepours-*")
	if err != nil {
		return nil, err
	}
	_, err = io.WriteString(tmp, body)
	if err == nil {
		_, err = tmp.Seek(0, io.SeekStart)
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	return tmp, nil
}

func refill(f *os.File, src io.Reader) (int64, error) {
	if err := f.Truncate(0); err != nil {
		return 0, err
	}
	return io.Copy(f, src)
}
