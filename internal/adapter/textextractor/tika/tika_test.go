package tika

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(os.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() { _ = os.Remove(path) })
	return path
}

func TestExtractPath_CollapsesWhitespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tika", r.URL.Path)
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte("  Question 1:\n\n  What   is Go?\t\n"))
	}))
	defer srv.Close()

	path := writeTempDoc(t, "paper-test.pdf", "%PDF-fake")
	c := New(srv.URL)
	out, err := c.ExtractPath(context.Background(), "paper.pdf", path)
	require.NoError(t, err)
	assert.Equal(t, "Question 1: What is Go?", out)
}

func TestExtractPath_Non2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	path := writeTempDoc(t, "bad-doc-test.docx", "junk")
	c := New(srv.URL)
	_, err := c.ExtractPath(context.Background(), "bad.docx", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tika status 422")
}

func TestExtractPath_DisallowedPath(t *testing.T) {
	c := New("http://unused")
	_, err := c.ExtractPath(context.Background(), "passwd", "/etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disallowed path")
}

func TestExtractPath_MissingFile(t *testing.T) {
	c := New("http://unused")
	_, err := c.ExtractPath(context.Background(), "gone.txt", filepath.Join(os.TempDir(), "does-not-exist-12345.txt"))
	require.Error(t, err)
}

func TestContentTypeFromExt(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFromExt(".pdf"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", contentTypeFromExt(".DOCX"))
	assert.Equal(t, "text/plain", contentTypeFromExt(".txt"))
	assert.Equal(t, "", contentTypeFromExt(""))
}
