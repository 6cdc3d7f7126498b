package s3mock

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
)

// Server is a path-style S3 stand-in for local runs. It keeps objects in memory.
type Server struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewServer() *Server {
	return &Server{objects: make(map[string][]byte)}
}

func (m *Server) Object(bucket, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[bucket+"/"+key]
	return data, ok
}

func (m *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key := extractBucketAndKey(r.URL.Path)
	if bucket == "" {
		http.Error(w, "bucket name required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodHead:
		if key == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if _, ok := m.Object(bucket, key); !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := m.Object(bucket, key)
		if !ok {
			http.Error(w, "object not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case http.MethodPut:
		m.putObject(w, r, bucket, key)
	case http.MethodDelete:
		m.mu.Lock()
		delete(m.objects, bucket+"/"+key)
		m.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (m *Server) putObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.objects[bucket+"/"+key] = data
	m.mu.Unlock()

	sum := md5.Sum(data)
	w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
	w.WriteHeader(http.StatusOK)
	log.Printf("[mocks3] stored %s/%s (%d bytes)", bucket, key, len(data))
}

func extractBucketAndKey(path string) (string, string) {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
