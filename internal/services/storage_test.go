package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeaders builds multipart headers the way a form upload would.
func fileHeaders(t *testing.T, field string, files map[string]string) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := writer.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field]
}

func TestAllowedFile(t *testing.T) {
	assert.True(t, AllowedFile("room.JPG"))
	assert.True(t, AllowedFile("tour.webm"))
	assert.False(t, AllowedFile("script.sh"))
	assert.False(t, AllowedFile("noext"))
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "my_room.png", SecureFilename("../../my room.png"))
	assert.Equal(t, "passwd", SecureFilename("/etc/passwd"))
	assert.Equal(t, "png", SecureFilename("客厅.png"))
}

func TestUploadStorageSaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	storage, err := NewUploadStorage(dir)
	require.NoError(t, err)

	headers := fileHeaders(t, "images", map[string]string{"room.png": "png-bytes"})
	path, err := storage.Save(headers[0])
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "_room.png"))
	data, err := os.ReadFile(filepath.FromSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	storage.Remove(path)
	_, err = os.Stat(filepath.FromSlash(path))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadStorageRejectsUnsupportedType(t *testing.T) {
	storage, err := NewUploadStorage(t.TempDir())
	require.NoError(t, err)

	headers := fileHeaders(t, "images", map[string]string{"run.sh": "#!/bin/sh"})
	_, err = storage.Save(headers[0])
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestProtectedFilesAreNeverRemoved(t *testing.T) {
	assert.True(t, IsProtected("static/images/icon_lg.png"))
	assert.True(t, IsProtected("/static/images/ic_e_a.png"))
	assert.False(t, IsProtected("static/uploads/abc_room.png"))
}
