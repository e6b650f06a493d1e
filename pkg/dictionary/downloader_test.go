package dictionary

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestEnsureWordList_LocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.txt")
	if err := os.WriteFile(path, []byte("local\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// An unreachable URL proves the existing file short-circuits the download.
	if err := EnsureWordList(context.Background(), path, "http://127.0.0.1:1/never"); err != nil {
		t.Fatalf("EnsureWordList failed with local file: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "local\n" {
		t.Fatalf("local file was overwritten: %q", got)
	}
}

func TestEnsureWordList_Download(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("的\n了\n"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "lists", "stop.txt")
	if err := EnsureWordList(context.Background(), path, srv.URL+"/cn_stopwords.txt"); err != nil {
		t.Fatalf("EnsureWordList: %v", err)
	}
	if gotUA != "semnet-cli" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	words, err := LoadWordList(path)
	if err != nil {
		t.Fatalf("LoadWordList: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"的", "了"}) {
		t.Fatalf("words = %q", words)
	}
}

func TestEnsureWordList_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(`["电影","剧情"]`))
	gz.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "dict.json")
	if err := EnsureWordList(context.Background(), path, srv.URL+"/dict.json.gz"); err != nil {
		t.Fatalf("EnsureWordList: %v", err)
	}
	words, err := LoadWordList(path)
	if err != nil {
		t.Fatalf("LoadWordList: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"电影", "剧情"}) {
		t.Fatalf("words = %q", words)
	}
}

func TestEnsureWordList_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "stop.txt")
	if err := EnsureWordList(context.Background(), path, srv.URL); err == nil {
		t.Fatal("expected error on 404")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("failed download left a file behind: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temp files left behind: %v", entries)
	}

	if err := EnsureWordList(context.Background(), path, ""); err == nil {
		t.Fatal("expected error when file is missing and no URL is set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := EnsureWordList(ctx, path, srv.URL); err == nil {
		t.Fatal("expected error with canceled context")
	}
}
