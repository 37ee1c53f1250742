package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestStorageService(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	storage := NewStorageService(dir)
	require.NoError(t, storage.EnsureUploadDir())

	name, path, err := storage.SaveFile(fileHeader(t, "CV.TXT", englishResume))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "resume_"))
	assert.True(t, strings.HasSuffix(name, ".txt"))
	assert.Equal(t, storage.GetFilePath(name), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, englishResume, string(data))

	_, _, err = storage.SaveFile(fileHeader(t, "cv.exe", "x"))
	assert.ErrorContains(t, err, "invalid file extension")

	require.NoError(t, storage.DeleteFile(name))
	assert.Error(t, storage.DeleteFile(name))
}

func TestProcessReadsStoredFile(t *testing.T) {
	h := newHarness(t)
	h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) { s.scores["Data Analyst"] = 77 })

	storage := NewStorageService(t.TempDir())
	_, path, err := storage.SaveFile(fileHeader(t, "cv.txt", englishResume))
	require.NoError(t, err)

	result, err := h.pipeline.Process(context.Background(), ResumeInput{Filename: "cv.txt", Path: path})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", result.Name)
	assert.Equal(t, 77, result.AssignedScore)
}
