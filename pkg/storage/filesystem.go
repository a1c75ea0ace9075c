package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PublicPrefix is the URL path segment and stored reference prefix for uploads.
const PublicPrefix = "uploads"

const maxNameAttempts = 16

var whitespace = regexp.MustCompile(`\s+`)

// FileInfo describes a stored upload.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
	now     func() time.Time
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./" + PublicPrefix
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, now: time.Now}, nil
}

// Dir returns the base directory served under /uploads.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// SaveUpload stores r as "<unix-millis>-<sanitised original name>" and returns
// the reference "uploads/<file>" to persist alongside the record.
// A name already taken within the same millisecond moves the stamp forward.
func (s *LocalStorage) SaveUpload(originalName string, r io.Reader) (string, error) {
	stamp := s.now().UnixMilli()
	base := SanitizeFilename(originalName)
	for attempt := 0; ; attempt++ {
		name := strconv.FormatInt(stamp+int64(attempt), 10) + "-" + base
		err := s.SaveStream(name, r)
		if err == nil {
			return Reference(name), nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt >= maxNameAttempts {
			return "", err
		}
	}
}

// SaveStream copies from reader into the target file, removing any partial
// file on failure.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write upload stream: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close upload file: %w", err)
	}
	return nil
}

// Delete removes the file behind a stored reference. A missing file is not an error.
func (s *LocalStorage) Delete(ref string) error {
	name := BaseName(ref)
	if name == "" {
		return nil
	}
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// List returns every regular file directly under the base directory.
func (s *LocalStorage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read uploads directory: %w", err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat upload %s: %w", entry.Name(), err)
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return files, nil
}

// Path exposes the absolute path of a stored reference.
func (s *LocalStorage) Path(ref string) string {
	return filepath.Join(s.baseDir, BaseName(ref))
}

func (s *LocalStorage) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid upload name %q", filename)
	}
	return filepath.Join(s.baseDir, filename), nil
}

// SanitizeFilename strips directory components and replaces whitespace runs with "_".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = whitespace.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." || name == "/" {
		return "file"
	}
	return name
}

// Reference returns the canonical stored form "uploads/<name>".
func Reference(name string) string {
	return PublicPrefix + "/" + name
}

// BaseName extracts the file name from any historical reference form:
// absolute URLs, leading slashes, backslashes or repeated "uploads/" segments.
func BaseName(ref string) string {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, `\`, "/"))
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	if ref == "." || ref == ".." {
		return ""
	}
	return ref
}

// Normalize rewrites a stored reference into its canonical form. Empty stays empty.
func Normalize(ref string) string {
	name := BaseName(ref)
	if name == "" {
		return ""
	}
	return Reference(name)
}

// PublicURL turns a stored reference into an absolute URL under baseURL.
func PublicURL(baseURL, ref string) string {
	name := BaseName(ref)
	if name == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + Reference(name)
}
