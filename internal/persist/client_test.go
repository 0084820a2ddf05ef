package persist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSaveProject(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody pageBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("s3cret"))
	err := c.SaveProject(context.Background(), "my-site", "# hello", map[string]any{"title": "My Site"})
	if err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if gotPath != "/projects/my-site" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody.Content != "# hello" || gotBody.Meta["title"] != "My Site" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestSaveAboutServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SaveAbout(context.Background(), "body", nil)
	if err == nil {
		t.Fatal("want error on 500")
	}
	if !strings.Contains(err.Error(), "status 500") || !strings.Contains(err.Error(), "nope") {
		t.Errorf("error = %v", err)
	}
	if errors.Is(err, ErrAborted) {
		t.Error("server failure must not look like an abort")
	}
}

func TestCancelledSaveIsAborted(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	err := NewClient(srv.URL).SaveProject(ctx, "p", "md", nil)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatal("ErrAborted should wrap context.Canceled")
	}
}

func TestUploadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media" {
			t.Errorf("path = %q", r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "pic.png" || string(data) != "png-bytes" {
			t.Errorf("got %q %q", hdr.Filename, data)
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "/media/pic.png"})
	}))
	defer srv.Close()

	url, err := NewClient(srv.URL).UploadMedia(context.Background(), "pic.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
	if url != "/media/pic.png" {
		t.Errorf("url = %q", url)
	}
}
