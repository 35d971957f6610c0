package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestResolveLocalPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewResolver(Options{BaseDir: dir})

	p, ok := r.Resolve("a.png")
	if !ok || p != filepath.Join(dir, "a.png") {
		t.Fatalf("expected local path to resolve, got %q %v", p, ok)
	}
	if _, ok := r.Resolve("missing.png"); ok {
		t.Fatalf("missing file must resolve as absent")
	}
	if _, ok := r.Resolve("   "); ok {
		t.Fatalf("blank reference must resolve as absent")
	}
	img, err := Decode(p)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Fatalf("unexpected width %d", img.Bounds().Dx())
	}
}

func TestResolveHTTPUsesCache(t *testing.T) {
	var hits int32
	body := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		if req.URL.Path == "/missing.png" {
			http.NotFound(w, req)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	cache := NewCache()
	r := NewResolver(Options{CacheDir: t.TempDir(), Client: srv.Client(), Cache: cache})

	p1, ok := r.Resolve(srv.URL + "/photo.png")
	if !ok {
		t.Fatalf("expected download to succeed")
	}
	p2, _ := r.Resolve(srv.URL + "/photo.png")
	if p1 != p2 || filepath.Ext(p1) != ".png" {
		t.Fatalf("unexpected cached paths %q %q", p1, p2)
	}
	if _, ok := r.Resolve(srv.URL + "/missing.png"); ok {
		t.Fatalf("404 must resolve as absent")
	}
	r.Resolve(srv.URL + "/missing.png")
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected 2 requests thanks to the cache, got %d", got)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cache entries, got %d", cache.Len())
	}
}

func TestResolveDriveLink(t *testing.T) {
	var gotID string
	body := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotID = req.URL.Query().Get("id")
		w.Write(body)
	}))
	defer srv.Close()

	r := NewResolver(Options{
		CacheDir: t.TempDir(),
		Client:   srv.Client(),
		DriveURL: srv.URL + "/uc?id=%s",
	})
	p, ok := r.Resolve("https://drive.google.com/file/d/AbC_12-x/view?usp=sharing")
	if !ok {
		t.Fatalf("expected drive link to resolve")
	}
	if gotID != "AbC_12-x" {
		t.Fatalf("unexpected file id %q", gotID)
	}
	if filepath.Base(p) != "AbC_12-x.img" {
		t.Fatalf("unexpected cache file name %q", filepath.Base(p))
	}
}

func TestDriveFileID(t *testing.T) {
	cases := map[string]string{
		"https://drive.google.com/file/d/XYZ/view":   "XYZ",
		"https://drive.google.com/open?id=abc-123":   "abc-123",
		"https://drive.google.com/drive/folders/top": "",
	}
	for in, want := range cases {
		if got := DriveFileID(in); got != want {
			t.Fatalf("DriveFileID(%q) = %q, want %q", in, got, want)
		}
	}
}
