package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, maxUpload int64) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)
	r := gin.New()
	NewHandler(svc, maxUpload).RegisterRoutes(r)
	return r, svc
}

func TestCurrentIs404WhenEmpty(t *testing.T) {
	r, _ := newTestRouter(t, 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/current", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndCurrentReturnMetadataOnly(t *testing.T) {
	r, svc := newTestRouter(t, 0)
	ctx := context.Background()
	_, err := svc.Upload(ctx, "first.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "second.txt", strings.NewReader("secret body text"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents?limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret body text")

	var list []DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].DocumentID)
	assert.Equal(t, "first.txt", list[1].FileName)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var current DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, second.ID, current.DocumentID)
	assert.Equal(t, len("secret body text"), current.TextLength)
}

func TestUploadTooLargeIs413(t *testing.T) {
	r, _ := newTestRouter(t, 512)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "big.txt")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 4096))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "payload_too_large")
}
