package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDirStoreGet(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "models"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "models", "m.bin"), []byte("blob"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := s.Get(context.Background(), "models/m.bin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != "blob" {
		t.Fatalf("got %q", b)
	}
}

func TestDirStoreNotFound(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = s.Get(context.Background(), "missing.bin")
	if err == nil || !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	ok, err := s.Exists(context.Background(), "missing.bin")
	if err != nil || ok {
		t.Fatalf("exists=%v err=%v", ok, err)
	}
}

func TestDirStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Get(context.Background(), "../../etc/passwd"); err == nil || IsNotFound(err) {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestHTTPStoreGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/base/models/m.bin":
			w.Write([]byte("blob"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	s, err := NewHTTPStore(srv.URL+"/base", time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := s.Get(context.Background(), "models/m.bin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != "blob" {
		t.Fatalf("got %q", b)
	}
	_, err = s.Get(context.Background(), "models/other.bin")
	if err == nil || !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHTTPStoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	s, err := NewHTTPStore(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = s.Get(context.Background(), "k")
	if err == nil || IsNotFound(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestHTTPStoreExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method=%s", r.Method)
		}
		if r.URL.Path == "/present" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	s, err := NewHTTPStore(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if ok, err := s.Exists(context.Background(), "present"); err != nil || !ok {
		t.Fatalf("present: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Exists(context.Background(), "absent"); err != nil || ok {
		t.Fatalf("absent: ok=%v err=%v", ok, err)
	}
}

func TestHTTPStoreRejectsBadScheme(t *testing.T) {
	if _, err := NewHTTPStore("ftp://host/x", time.Second); err == nil {
		t.Fatal("expected scheme error")
	}
}
