package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Behnamfe76/docvault/internal/config"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func testStorageConfig(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		Bucket:       "docs",
		Region:       "us-east-1",
		AccessKey:    "test-access",
		SecretKey:    "test-secret",
		EndpointURL:  endpoint,
		UsePathStyle: true,
		PresignTTL:   60 * time.Second,
	}
}

func newFakeStore(t *testing.T) (*S3ObjectStore, *fakeS3) {
	t.Helper()
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3ObjectStore(context.Background(), testStorageConfig(srv.URL), srv.Client())
	require.NoError(t, err)
	return store, fake
}

func TestNewS3ObjectStoreRequiresBucket(t *testing.T) {
	_, err := NewS3ObjectStore(context.Background(), config.StorageConfig{Region: "us-east-1"}, nil)
	assert.Error(t, err)
}

func TestPutObject(t *testing.T) {
	store, fake := newFakeStore(t)

	err := store.Put(context.Background(), "report.pdf", []byte("%PDF-1.7 body"), PDFContentType)
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/docs/report.pdf", req.path)
	assert.Equal(t, PDFContentType, req.contentType)
	assert.Contains(t, req.body, "%PDF-1.7 body")
}

func TestPutObjectFailure(t *testing.T) {
	store, fake := newFakeStore(t)
	fake.status = http.StatusForbidden

	err := store.Put(context.Background(), "report.pdf", []byte("x"), PDFContentType)
	assert.Error(t, err)
}

func TestDeleteObject(t *testing.T) {
	store, fake := newFakeStore(t)

	require.NoError(t, store.Delete(context.Background(), "report.pdf"))
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].method)
	assert.Equal(t, "/docs/report.pdf", fake.requests[0].path)
}

func TestPresignGet(t *testing.T) {
	store, err := NewS3ObjectStore(context.Background(), testStorageConfig("http://s3.local:9000"), nil)
	require.NoError(t, err)

	raw, err := store.PresignGet(context.Background(), "report.pdf", 0)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "s3.local:9000", u.Host)
	assert.Equal(t, "/docs/report.pdf", u.Path)

	q := u.Query()
	assert.Equal(t, "60", q.Get("X-Amz-Expires"))
	assert.Equal(t, "inline", q.Get("response-content-disposition"))
	assert.Equal(t, PDFContentType, q.Get("response-content-type"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))

	raw, err = store.PresignGet(context.Background(), "report.pdf", 5*time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}
