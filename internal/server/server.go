// Package server exposes the compositing pipeline over HTTP: clients POST a
// frame and get back the composited PNG.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/faceforge/faceforge/internal/detect"
	"github.com/faceforge/faceforge/internal/gallery"
	"github.com/faceforge/faceforge/internal/identity"
	"github.com/faceforge/faceforge/internal/pipeline"
	"github.com/faceforge/faceforge/internal/types"

	_ "image/jpeg" // Register JPEG decoder for request bodies
)

// Config configures the composite server.
type Config struct {
	// OverlaySize is the size of procedurally generated overlays.
	OverlaySize int
	// Seed drives procedural overlay generation.
	Seed int64
	// MaxConcurrent caps in-flight composites; each request owns its own
	// surface, the cap just bounds CPU use.
	MaxConcurrent int
}

// Server handles composite and tint requests. Overlays are cached and
// shared read-only across requests.
type Server struct {
	cfg    Config
	proc   *pipeline.Processor
	store  *gallery.Store
	cache  *gallery.Cache
	logger *slog.Logger
	sem    chan struct{}

	active    atomic.Int32
	completed atomic.Int64
	failed    atomic.Int64
}

// Status is the JSON payload of GET /status.
type Status struct {
	ActiveComposites int   `json:"active_composites"`
	TotalCompleted   int64 `json:"total_completed"`
	TotalFailed      int64 `json:"total_failed"`
	MaxConcurrent    int   `json:"max_concurrent"`
	CachedOverlays   int   `json:"cached_overlays"`
}

// New creates a server. store may be nil (procedural overlays only);
// logger may be nil.
func New(cfg Config, store *gallery.Store, logger *slog.Logger) *Server {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.OverlaySize <= 0 {
		cfg.OverlaySize = 256
	}
	return &Server{
		cfg:    cfg,
		proc:   pipeline.NewProcessor(logger),
		store:  store,
		cache:  gallery.NewCache(),
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Handler returns the HTTP handler for the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /composite", s.handleComposite)
	mux.HandleFunc("POST /tint", s.handleTint)
	mux.HandleFunc("GET /identities", s.handleIdentities)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleComposite(w http.ResponseWriter, r *http.Request) {
	frame, err := decodeFrame(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	identityID := r.URL.Query().Get("identity")
	if identityID == "" {
		http.Error(w, "identity query parameter is required", http.StatusBadRequest)
		return
	}
	style, known := identity.Lookup(identityID)
	if !known {
		s.log().Warn("unknown identity requested, using neutral style", "identity", identityID)
	}

	expressionID := r.URL.Query().Get("expression")
	if expressionID == "" {
		expressionID = string(style.Mouth)
	}

	cfg := blendConfigFromQuery(r)

	s.sem <- struct{}{}
	s.active.Add(1)
	defer func() {
		s.active.Add(-1)
		<-s.sem
	}()

	detection, err := detect.Detect(frame)
	if err != nil {
		s.fail(w, err)
		return
	}

	overlay, err := s.overlayFor(identityID, expressionID)
	if err != nil {
		s.fail(w, err)
		return
	}

	result := s.proc.Process(frame, detection.Region, detection.Landmarks, overlay, cfg)
	if !result.Success {
		s.fail(w, result.Err)
		return
	}
	s.completed.Add(1)

	s.log().Info("composite served",
		"identity", identityID,
		"expression", expressionID,
		"elapsed", result.ProcessingTime,
	)
	writePNG(w, result.Image)
}

func (s *Server) handleTint(w http.ResponseWriter, r *http.Request) {
	frame, err := decodeFrame(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	identityID := r.URL.Query().Get("identity")
	if identityID == "" {
		http.Error(w, "identity query parameter is required", http.StatusBadRequest)
		return
	}

	result := s.proc.Tint(frame, identityID)
	if !result.Success {
		s.fail(w, result.Err)
		return
	}
	s.completed.Add(1)
	writePNG(w, result.Image)
}

func (s *Server) handleIdentities(w http.ResponseWriter, _ *http.Request) {
	ids := identity.IDs()
	sort.Strings(ids)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"identities": ids}); err != nil {
		s.log().Error("failed to encode identities", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := Status{
		ActiveComposites: int(s.active.Load()),
		TotalCompleted:   s.completed.Load(),
		TotalFailed:      s.failed.Load(),
		MaxConcurrent:    s.cfg.MaxConcurrent,
		CachedOverlays:   s.cache.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.log().Error("failed to encode status", "error", err)
	}
}

// overlayFor resolves an overlay through the cache, backed by the store
// when configured and the procedural generator otherwise.
func (s *Server) overlayFor(identityID, expressionID string) (image.Image, error) {
	return s.cache.GetOrLoad(identityID, expressionID, func() (image.Image, error) {
		if s.store != nil {
			data, err := s.store.Get(identityID, expressionID)
			if err == nil {
				return gallery.DecodeOverlay(data)
			}
			s.log().Warn("overlay not in store, generating procedurally",
				"identity", identityID, "expression", expressionID)
		}

		style, _ := identity.Lookup(identityID)
		return gallery.Generate(style, expressionID, s.cfg.OverlaySize, s.overlaySeed(identityID, expressionID))
	})
}

// overlaySeed derives a stable per-overlay seed from the base seed.
func (s *Server) overlaySeed(identityID, expressionID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(identityID))
	h.Write([]byte{'/'})
	h.Write([]byte(expressionID))
	return s.cfg.Seed + int64(h.Sum64()&0x7fffffff)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.failed.Add(1)
	s.log().Error("composite failed", "error", err)

	status := http.StatusInternalServerError
	if errors.Is(err, types.ErrInvalidOverlay) || errors.Is(err, types.ErrOutOfBounds) ||
		errors.Is(err, types.ErrSurfaceUnavailable) {
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func decodeFrame(r *http.Request) (image.Image, error) {
	img, _, err := image.Decode(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("frame is zero-sized")
	}
	return img, nil
}

func blendConfigFromQuery(r *http.Request) types.BlendConfig {
	cfg := types.DefaultBlendConfig()
	q := r.URL.Query()

	if v := q.Get("quality"); v != "" {
		cfg.Quality = v
	}
	if v := q.Get("blend"); v != "" {
		cfg.BlendMode = v
	}
	if v := q.Get("feather"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FeatherAmount = f
		}
	}
	if v := q.Get("colormatch"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ColorMatch = b
		}
	}
	return cfg
}

func writePNG(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		// Headers are already out; nothing to do but log.
		slog.Default().Error("failed to encode response PNG", "error", err)
	}
}
