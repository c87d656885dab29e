package services

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "mp4": true, "webm": true,
}

// Bundled site assets. Listings may reference them but deleting a listing never
// removes them.
var protectedFiles = map[string]bool{}

func init() {
	for _, name := range []string{"icon_lg.png", "hero_bg.jpg", "favicon.ico", "ic_e_a.png", "ic_e_b.png", "ic_e_c.png", "ic_e_d.png", "ic_e_e.png", "ic_e_f.png", "ic_e_g.png", "ic_e_h.png"} {
		protectedFiles["static/images/"+name] = true
		protectedFiles["/static/images/"+name] = true
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// UploadStorage writes form uploads to a local directory.
type UploadStorage struct {
	dir string
}

// NewUploadStorage constructs UploadStorage rooted at dir, creating it if needed.
func NewUploadStorage(dir string) (*UploadStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &UploadStorage{dir: dir}, nil
}

// AllowedFile reports whether the filename has an accepted extension.
func AllowedFile(filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return ext != "" && allowedExtensions[strings.ToLower(ext)]
}

// IsProtected reports whether path names a bundled asset.
func IsProtected(path string) bool {
	return protectedFiles[path]
}

// SecureFilename reduces name to a safe ASCII base name.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Save stores the upload under a random prefix and returns its relative path.
func (s *UploadStorage) Save(fh *multipart.FileHeader) (string, error) {
	if !AllowedFile(fh.Filename) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, fh.Filename)
	}

	safe := SecureFilename(fh.Filename)
	if safe == "" || !AllowedFile(safe) {
		safe = "upload" + strings.ToLower(filepath.Ext(fh.Filename))
	}
	name := uuid.New().String()
	name = strings.ReplaceAll(name, "-", "") + "_" + safe
	target := filepath.Join(s.dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filepath.ToSlash(target), nil
}

// Remove deletes a stored file unless it is protected. Failures are logged only.
func (s *UploadStorage) Remove(path string) {
	if path == "" || IsProtected(path) {
		return
	}
	target := filepath.FromSlash(path)
	if !strings.HasPrefix(path, filepath.ToSlash(s.dir)) {
		target = filepath.FromSlash(strings.TrimPrefix(path, "/"))
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		log.Printf("[Storage] failed to remove %s: %v", path, err)
	}
}
