package compose

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/faceforge/faceforge/internal/mask"
	"github.com/faceforge/faceforge/internal/transform"
	"github.com/faceforge/faceforge/internal/types"
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func mustSolve(t *testing.T, region types.Region, w, h int) transform.Transform {
	t.Helper()
	tr, err := transform.Solve(region, w, h)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	return tr
}

func expectChannel(t *testing.T, got, want uint8, context string) {
	t.Helper()
	// Allow one count of rounding slack.
	diff := int(got) - int(want)
	if diff < -1 || diff > 1 {
		t.Errorf("%s: got %d, want %d", context, got, want)
	}
}

func TestFrameAppliesQualityOpacity(t *testing.T) {
	region := types.Region{X: 0, Y: 0, Width: 64, Height: 64}
	background := solidNRGBA(64, 64, color.NRGBA{A: 255})
	overlay := solidNRGBA(64, 64, color.NRGBA{R: 255, A: 255})
	tr := mustSolve(t, region, 64, 64)

	cases := []struct {
		quality string
		wantR   uint8
	}{
		{types.QualityLow, uint8(math.Round(255 * 0.8))},
		{types.QualityMedium, uint8(math.Round(255 * 0.9))},
		{types.QualityHigh, uint8(math.Round(255 * 0.95))},
		{"ultra", uint8(math.Round(255 * 0.9))}, // unknown falls back to 0.9
	}

	for _, tc := range cases {
		t.Run(tc.quality, func(t *testing.T) {
			surface, err := NewSurface(64, 64)
			if err != nil {
				t.Fatalf("NewSurface: %v", err)
			}
			cfg := types.BlendConfig{Quality: tc.quality, BlendMode: types.BlendNormal}
			if err := Frame(surface, background, overlay, tr, nil, cfg); err != nil {
				t.Fatalf("Frame returned error: %v", err)
			}
			got := surface.Image().NRGBAAt(32, 32)
			expectChannel(t, got.R, tc.wantR, "red over black")
			expectChannel(t, got.G, 0, "green untouched")
		})
	}
}

func TestFrameBlendModes(t *testing.T) {
	region := types.Region{X: 0, Y: 0, Width: 64, Height: 64}
	tr := mustSolve(t, region, 64, 64)

	// Mid-gray background, mid-gray overlay, full coverage.
	background := solidNRGBA(64, 64, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	overlay := solidNRGBA(64, 64, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	// With sa = 0.9 and opaque dest:
	//   normal:   0.502*0.9 + 0.502*0.1                    = 0.502
	//   multiply: (0.502*0.502)*0.9 + 0.502*0.1            ≈ 0.277
	//   overlay:  dc>0.5 ⇒ 1-2(1-s)(1-d) ≈ 0.504 ⇒ ≈ 0.504 (≈ normal here)
	cases := []struct {
		mode  string
		wantR uint8
	}{
		{types.BlendNormal, 128},
		{types.BlendMultiply, 71},
		{"bogus-mode", 128}, // unknown falls back to normal
	}

	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			surface, err := NewSurface(64, 64)
			if err != nil {
				t.Fatalf("NewSurface: %v", err)
			}
			cfg := types.BlendConfig{Quality: types.QualityMedium, BlendMode: tc.mode}
			if err := Frame(surface, background, overlay, tr, nil, cfg); err != nil {
				t.Fatalf("Frame returned error: %v", err)
			}
			expectChannel(t, surface.Image().NRGBAAt(32, 32).R, tc.wantR, tc.mode)
		})
	}
}

func TestFrameOverlayDoublesDarkRegions(t *testing.T) {
	region := types.Region{X: 0, Y: 0, Width: 64, Height: 64}
	tr := mustSolve(t, region, 64, 64)
	// Dark background (dc < 0.5) takes the 2*s*d branch.
	background := solidNRGBA(64, 64, color.NRGBA{R: 64, G: 64, B: 64, A: 255})
	overlay := solidNRGBA(64, 64, color.NRGBA{R: 204, G: 204, B: 204, A: 255})

	surface, err := NewSurface(64, 64)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	cfg := types.BlendConfig{Quality: types.QualityMedium, BlendMode: types.BlendOverlay}
	if err := Frame(surface, background, overlay, tr, nil, cfg); err != nil {
		t.Fatalf("Frame returned error: %v", err)
	}

	// overlay: b = 2*0.8*0.251 ≈ 0.402, out ≈ 0.402*0.9 + 0.251*0.1 ≈ 0.387.
	expectChannel(t, surface.Image().NRGBAAt(32, 32).R, 99, "overlay over dark gray")
}

func TestFrameMultiplyDarkens(t *testing.T) {
	region := types.Region{X: 0, Y: 0, Width: 64, Height: 64}
	tr := mustSolve(t, region, 64, 64)
	background := solidNRGBA(64, 64, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	overlay := solidNRGBA(64, 64, color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	surface, err := NewSurface(64, 64)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	cfg := types.BlendConfig{Quality: types.QualityHigh, BlendMode: types.BlendMultiply}
	if err := Frame(surface, background, overlay, tr, nil, cfg); err != nil {
		t.Fatalf("Frame returned error: %v", err)
	}

	got := surface.Image().NRGBAAt(32, 32).R
	if got >= 100 {
		t.Errorf("multiply should darken below both inputs, got %d", got)
	}
}

func TestFrameResetsSurfaceState(t *testing.T) {
	region := types.Region{X: 8, Y: 8, Width: 48, Height: 48}
	tr := mustSolve(t, region, 32, 32)
	background := solidNRGBA(64, 64, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	overlay := solidNRGBA(32, 32, color.NRGBA{R: 240, G: 10, B: 10, A: 255})

	surface, err := NewSurface(64, 64)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}

	// First call uses multiply at low quality; state must not leak into the
	// second normal-mode call.
	dirty := types.BlendConfig{Quality: types.QualityLow, BlendMode: types.BlendMultiply, FeatherAmount: 0.7}
	m := mask.Feather(region, dirty.FeatherAmount)
	if err := Frame(surface, background, overlay, tr, m, dirty); err != nil {
		t.Fatalf("first Frame: %v", err)
	}
	if surface.BlendMode() != types.BlendNormal || surface.Opacity() != 1.0 {
		t.Fatalf("state not reset: mode=%s opacity=%g", surface.BlendMode(), surface.Opacity())
	}

	clean := types.BlendConfig{Quality: types.QualityMedium, BlendMode: types.BlendNormal}
	if err := Frame(surface, background, overlay, tr, nil, clean); err != nil {
		t.Fatalf("second Frame: %v", err)
	}
	first := append([]uint8(nil), surface.Image().Pix...)

	if err := Frame(surface, background, overlay, tr, nil, clean); err != nil {
		t.Fatalf("third Frame: %v", err)
	}
	second := surface.Image().Pix

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("consecutive normal-mode composites differ at pix offset %d: %d != %d", i, first[i], second[i])
		}
	}
}

func TestFrameFeatherClipsOverlayOnly(t *testing.T) {
	region := types.Region{X: 16, Y: 16, Width: 32, Height: 32}
	tr := mustSolve(t, region, 32, 32)
	background := solidNRGBA(64, 64, color.NRGBA{B: 255, A: 255})
	overlay := solidNRGBA(32, 32, color.NRGBA{R: 255, A: 255})

	surface, err := NewSurface(64, 64)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	cfg := types.BlendConfig{Quality: types.QualityHigh, BlendMode: types.BlendNormal, FeatherAmount: 0.5}
	m := mask.Feather(region, cfg.FeatherAmount)
	if err := Frame(surface, background, overlay, tr, m, cfg); err != nil {
		t.Fatalf("Frame returned error: %v", err)
	}

	// Region center: overlay visible.
	center := surface.Image().NRGBAAt(32, 32)
	if center.R == 0 {
		t.Error("overlay should be drawn at the region center")
	}

	// Region corner: outside the circle, background must survive untouched.
	corner := surface.Image().NRGBAAt(17, 17)
	if corner != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("background outside the mask circle was modified: %+v", corner)
	}

	// Far outside the region: pure background.
	outside := surface.Image().NRGBAAt(2, 60)
	if outside != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("background outside region was modified: %+v", outside)
	}
}

func TestFrameErrors(t *testing.T) {
	region := types.Region{X: 0, Y: 0, Width: 32, Height: 32}
	tr := mustSolve(t, region, 32, 32)
	background := solidNRGBA(64, 64, color.NRGBA{A: 255})
	overlay := solidNRGBA(32, 32, color.NRGBA{R: 255, A: 255})
	cfg := types.DefaultBlendConfig()

	surface, err := NewSurface(64, 64)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}

	if err := Frame(nil, background, overlay, tr, nil, cfg); !errors.Is(err, types.ErrSurfaceUnavailable) {
		t.Errorf("nil surface: got %v", err)
	}
	if err := Frame(surface, nil, overlay, tr, nil, cfg); !errors.Is(err, types.ErrSurfaceUnavailable) {
		t.Errorf("nil background: got %v", err)
	}
	if err := Frame(surface, background, nil, tr, nil, cfg); !errors.Is(err, types.ErrInvalidOverlay) {
		t.Errorf("nil overlay: got %v", err)
	}
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if err := Frame(surface, background, empty, tr, nil, cfg); !errors.Is(err, types.ErrInvalidOverlay) {
		t.Errorf("empty overlay: got %v", err)
	}

	if _, err := NewSurface(0, 10); !errors.Is(err, types.ErrSurfaceUnavailable) {
		t.Errorf("zero-size surface: got %v", err)
	}
}
