// Package pipeline wires the transform solver, feather mask, compositor,
// and color harmonizer into a single composite invocation.
package pipeline

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/faceforge/faceforge/internal/compose"
	"github.com/faceforge/faceforge/internal/harmonize"
	"github.com/faceforge/faceforge/internal/mask"
	"github.com/faceforge/faceforge/internal/transform"
	"github.com/faceforge/faceforge/internal/types"
)

// Processor runs composite invocations. It owns no long-lived state beyond
// its logger; every call constructs and discards its own surface, so a
// single Processor may serve concurrent callers.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a processor. logger may be nil.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{logger: logger}
}

// Process runs one composite: solve the overlay placement, draw background
// and masked overlay, then optionally harmonize the region's tone. Errors
// come back inside the result, never as panics; ProcessingTime is recorded
// on both success and failure. The landmark set is accepted for future
// landmark-aware transforms but does not affect the placement.
func (p *Processor) Process(
	background image.Image,
	region types.Region,
	landmarks types.LandmarkSet,
	overlay image.Image,
	cfg types.BlendConfig,
) types.CompositeResult {
	started := time.Now()

	if background == nil || background.Bounds().Empty() {
		return types.Failure(fmt.Errorf("%w: no background frame", types.ErrSurfaceUnavailable), started)
	}
	if err := region.Validate(); err != nil {
		return types.Failure(err, started)
	}
	if overlay == nil || overlay.Bounds().Empty() {
		return types.Failure(fmt.Errorf("%w: overlay is missing or zero-sized", types.ErrInvalidOverlay), started)
	}
	if !region.Intersects(background.Bounds()) {
		return types.Failure(fmt.Errorf("%w: region %v outside frame %v", types.ErrOutOfBounds, region.Rect(), background.Bounds()), started)
	}

	ob := overlay.Bounds()
	tr, err := transform.Solve(region, ob.Dx(), ob.Dy())
	if err != nil {
		return types.Failure(err, started)
	}

	bounds := background.Bounds()
	surface, err := compose.NewSurface(bounds.Dx(), bounds.Dy())
	if err != nil {
		return types.Failure(err, started)
	}

	var m *mask.Mask
	if cfg.FeatherAmount > 0 {
		m = mask.Feather(region, cfg.FeatherAmount)
	}

	p.log().Debug("compositing frame",
		"region", region.Rect().String(),
		"overlay", fmt.Sprintf("%dx%d", ob.Dx(), ob.Dy()),
		"landmarks", len(landmarks),
		"quality", cfg.Quality,
		"blend", cfg.BlendMode,
		"feather", cfg.FeatherAmount,
	)

	if err := compose.Frame(surface, background, overlay, tr, m, cfg); err != nil {
		return types.Failure(err, started)
	}

	if cfg.ColorMatch {
		harmonize.Region(surface.Image(), region)
	}

	return types.Completed(surface.Image(), started)
}

// Tint runs the whole-frame simplified path: the identity's fixed
// per-channel tint over a copy of the frame, no geometry involved.
func (p *Processor) Tint(frame image.Image, identityID string) types.CompositeResult {
	started := time.Now()

	if frame == nil || frame.Bounds().Empty() {
		return types.Failure(fmt.Errorf("%w: no frame to tint", types.ErrSurfaceUnavailable), started)
	}

	bounds := frame.Bounds()
	surface, err := compose.NewSurface(bounds.Dx(), bounds.Dy())
	if err != nil {
		return types.Failure(err, started)
	}

	out := surface.Image()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, frame.At(x, y))
		}
	}

	harmonize.Tint(out, identityID)
	return types.Completed(out, started)
}

func (p *Processor) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}
