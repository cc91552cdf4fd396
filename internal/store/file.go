package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File keeps each collection in its own newline-delimited text file.
type File struct {
	paths map[Collection]string
}

// NewFile creates a file store. Parent directories are created on demand;
// missing files load as empty lists.
func NewFile(paths map[Collection]string) (*File, error) {
	for _, c := range Collections {
		p, ok := paths[c]
		if !ok || p == "" {
			return nil, fmt.Errorf("no path for %s list: %w", c, ErrUnknownCollection)
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("create directory for %s list: %w", c, err)
		}
	}
	return &File{paths: paths}, nil
}

func (f *File) path(c Collection) (string, error) {
	p, ok := f.paths[c]
	if !ok {
		return "", fmt.Errorf("%q: %w", c, ErrUnknownCollection)
	}
	return p, nil
}

func (f *File) Load(_ context.Context, c Collection) ([]string, error) {
	p, err := f.path(c)
	if err != nil {
		return nil, err
	}

	fh, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer fh.Close()

	var lines []string
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return normalizeLines(lines), nil
}

// Append writes and syncs the entries before returning, so a crash right
// after Append cannot lose them.
func (f *File) Append(_ context.Context, c Collection, urls ...string) error {
	p, err := f.path(c)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return nil
	}

	fh, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	if _, err := fh.WriteString(joinLines(urls)); err != nil {
		fh.Close()
		return fmt.Errorf("append to %s: %w", p, err)
	}
	if err := fh.Sync(); err != nil {
		fh.Close()
		return fmt.Errorf("sync %s: %w", p, err)
	}
	return fh.Close()
}

// Overwrite replaces the file through a temp file and rename.
func (f *File) Overwrite(_ context.Context, c Collection, urls []string) error {
	p, err := f.path(c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", p, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(joinLines(urls)); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace %s: %w", p, err)
	}
	return nil
}

func (f *File) Close() error { return nil }

func joinLines(urls []string) string {
	var sb strings.Builder
	for _, u := range urls {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}
	return sb.String()
}
