package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Getabako/instagram-workflow-template/internal/render"
	"github.com/Getabako/instagram-workflow-template/internal/state"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testServer(t *testing.T, staticDir string) (*HTTPServer, *state.Store) {
	t.Helper()
	store := state.NewStore()
	compositor := render.NewCompositor(render.NewColorSelector(rand.NewPCG(3, 5)), render.DefaultFonts())
	return NewHTTPServer(ServerConfig{StaticDir: staticDir}, APIV1Deps{Compositor: compositor, Store: store}), store
}

func decodeAPIError(t *testing.T, body io.Reader) apiError {
	t.Helper()
	var e apiError
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func multipartCompose(t *testing.T, background []byte, title, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if background != nil {
		fw, err := mw.CreateFormFile("background", "bg.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write(background)
	}
	_ = mw.WriteField("title", title)
	_ = mw.WriteField("content", content)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 0x80, G: 0x40, B: 0x20, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestComposeEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	body, ctype := multipartCompose(t, pngBytes(t, 40, 40), "Title", "Some\\ncontent")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compose", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	cfg, err := png.DecodeConfig(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != render.CanvasWidth || cfg.Height != render.CanvasHeight {
		t.Fatalf("unexpected size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestComposeEndpointErrors(t *testing.T) {
	srv, _ := testServer(t, "")
	tests := []struct {
		name       string
		background []byte
		status     int
		code       string
	}{
		{"missing file", nil, http.StatusBadRequest, "bad_request"},
		{"undecodable", []byte("not an image"), http.StatusUnprocessableEntity, "load_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ctype := multipartCompose(t, tt.background, "T", "C")
			req := httptest.NewRequest(http.MethodPost, "/api/v1/compose", body)
			req.Header.Set("Content-Type", ctype)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if e := decodeAPIError(t, rec.Body); e.Error != tt.code || e.Message == "" {
				t.Fatalf("unexpected error body %+v", e)
			}
		})
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/layout?text="+"%E3%81%AF%E3%81%84%5Cn%E4%BB%8A%E6%97%A5%E3%82%82%E9%A0%91%E5%BC%B5%E3%82%8D%E3%81%86", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp layoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Lines[0] != "はい今日も頑張ろう" {
		t.Fatalf("unexpected layout %+v", resp)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/layout", nil))
	var blank map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&blank); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lines, ok := blank["lines"].([]any); !ok || len(lines) != 0 {
		t.Fatalf("blank text should give an empty list, got %v", blank["lines"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, store := testServer(t, "")
	store.Begin(8, "juku_post_2026_10")
	store.AddComposed()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Phase != "composing" || resp.Total != 8 || resp.Composed != 1 || resp.Folder != "juku_post_2026_10" || resp.Started == nil || resp.Finished != nil {
		t.Fatalf("unexpected status %+v", resp)
	}
}

func TestQREndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	tests := []struct {
		url    string
		status int
		code   string
	}{
		{"/api/v1/qr?text=https://img.example/juku_post_2026_10/&size=128", http.StatusOK, ""},
		{"/api/v1/qr?size=128", http.StatusBadRequest, "missing_text"},
		{"/api/v1/qr?text=x&size=big", http.StatusBadRequest, "invalid_size"},
		{"/api/v1/qr?text=x&size=10", http.StatusBadRequest, "invalid_size"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
		if rec.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.url, rec.Code, tt.status)
		}
		if tt.code != "" {
			if e := decodeAPIError(t, rec.Body); e.Error != tt.code {
				t.Fatalf("%s: error = %q, want %q", tt.url, e.Error, tt.code)
			}
			continue
		}
		img, err := png.Decode(rec.Body)
		if err != nil {
			t.Fatalf("decode qr: %v", err)
		}
		if img.Bounds().Dx() != 128 {
			t.Fatalf("qr width = %d", img.Bounds().Dx())
		}
	}
}

func TestAPIUnknownRouteAndMethod(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound || decodeAPIError(t, rec.Body).Error != "not_found" {
		t.Fatalf("unknown route status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/compose", nil))
	if rec.Code != http.StatusMethodNotAllowed || decodeAPIError(t, rec.Body).Error != "method_not_allowed" {
		t.Fatalf("wrong method status = %d", rec.Code)
	}
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "000.png"), pngBytes(t, 2, 2), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	srv, _ := testServer(t, dir)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/000.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("static status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil))
	if rec.Code == http.StatusOK {
		t.Fatalf("traversal status = %d", rec.Code)
	}

	noStatic, _ := testServer(t, "")
	rec = httptest.NewRecorder()
	noStatic.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/000.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("without static dir status = %d", rec.Code)
	}
}

func TestStaticDirCreatedAfterStart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "composed")
	srv, _ := testServer(t, dir)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/000.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("before mkdir status = %d", rec.Code)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "000.png"), pngBytes(t, 2, 2), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/000.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("after mkdir status = %d", rec.Code)
	}
}

func TestDevCORS(t *testing.T) {
	srv, _ := testServer(t, "")
	srv.DevMode = true

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/compose", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestHTTPServerStartStop(t *testing.T) {
	srv, _ := testServer(t, "")
	srv.Addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	resp, err := http.Get("http://" + srv.ListenAddr() + "/api/v1/layout?text=hi")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := srv.Start(ctx); err == nil {
		t.Fatal("Start after Stop should fail")
	}
}

func TestServerConfigFromEnv(t *testing.T) {
	t.Setenv(EnvListenAddr, "9090")
	t.Setenv(EnvDevMode, "true")
	t.Setenv(EnvStaticDir, "/srv/composed")
	cfg, err := DefaultServerConfigFromEnv(":8080")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if cfg.ListenAddr != ":9090" || !cfg.DevMode || cfg.StaticDir != "/srv/composed" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv(EnvDevMode, "maybe")
	if _, err := DefaultServerConfigFromEnv(":8080"); err == nil {
		t.Fatal("expected error for invalid boolean")
	}
}
