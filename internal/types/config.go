package types

// Quality levels for compositing. Unknown values fall back to QualityMedium
// behavior at the point of use.
const (
	QualityLow    = "low"
	QualityMedium = "medium"
	QualityHigh   = "high"
)

// Blend modes for drawing the overlay over the background. Unknown values
// fall back to BlendNormal at the point of use.
const (
	BlendNormal   = "normal"
	BlendOverlay  = "overlay"
	BlendMultiply = "multiply"
)

// BlendConfig is the per-call compositing configuration. It is a pure value
// object; callers supply a fresh one per composite or use Default.
type BlendConfig struct {
	Quality       string
	BlendMode     string
	FeatherAmount float64
	ColorMatch    bool
}

// DefaultBlendConfig returns the configuration used when the caller supplies
// none.
func DefaultBlendConfig() BlendConfig {
	return BlendConfig{
		Quality:       QualityMedium,
		BlendMode:     BlendNormal,
		FeatherAmount: 0.3,
		ColorMatch:    true,
	}
}
