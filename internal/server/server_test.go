package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testFrame(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 120, G: 110, B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test frame: %v", err)
	}
	return &buf
}

func newTestServer() *Server {
	return New(Config{OverlaySize: 64, Seed: 1337, MaxConcurrent: 2}, nil, nil)
}

func TestCompositeEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/composite?identity=einstein&quality=high&feather=0.5", testFrame(t, 128, 128))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}

	out, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if out.Bounds().Dx() != 128 || out.Bounds().Dy() != 128 {
		t.Errorf("output dimensions = %v, want 128x128", out.Bounds())
	}
}

func TestCompositeRequiresIdentity(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/composite", testFrame(t, 64, 64))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCompositeRejectsGarbageBody(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/composite?identity=einstein", bytes.NewBufferString("not an image"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTintEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/tint?identity=einstein", testFrame(t, 32, 32))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	out, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	// Frame was (120,110,100); einstein tint scales red by 1.1 -> 132.
	r, _, _, _ := out.At(16, 16).RGBA()
	if uint8(r>>8) != 132 {
		t.Errorf("tinted red = %d, want 132", uint8(r>>8))
	}
}

func TestIdentitiesEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/identities", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var payload map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	found := false
	for _, id := range payload["identities"] {
		if id == "einstein" {
			found = true
		}
	}
	if !found {
		t.Error("einstein missing from identities list")
	}
}

func TestStatusEndpointCountsComposites(t *testing.T) {
	srv := newTestServer()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/composite?identity=frida", testFrame(t, 64, 64))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("composite failed: %d %s", rec.Code, rec.Body.String())
	}

	statusReq := httptest.NewRequest(http.MethodGet, "/status", nil)
	statusRec := httptest.NewRecorder()
	handler.ServeHTTP(statusRec, statusReq)

	var status Status
	if err := json.Unmarshal(statusRec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	if status.TotalCompleted != 1 {
		t.Errorf("total_completed = %d, want 1", status.TotalCompleted)
	}
	if status.CachedOverlays != 1 {
		t.Errorf("cached_overlays = %d, want 1", status.CachedOverlays)
	}
	if status.ActiveComposites != 0 {
		t.Errorf("active_composites = %d, want 0", status.ActiveComposites)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
