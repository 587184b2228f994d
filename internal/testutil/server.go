package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// FileServer serves fixed payloads by path and counts requests.
type FileServer struct {
	*httptest.Server
	Requests atomic.Int64
}

// NewFileServer starts a server answering GET <path> with files[path]; unknown paths
// return 404. The server is closed when the test ends.
func NewFileServer(t testing.TB, files map[string][]byte) *FileServer {
	t.Helper()
	fs := &FileServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.Requests.Add(1)
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	}))
	t.Cleanup(fs.Close)
	return fs
}
