// Package identity holds the fixed gallery of target identities and their
// per-identity style descriptors.
package identity

// MouthKind selects which mouth expression variant the gallery prefers for
// an identity.
type MouthKind string

const (
	MouthNeutral MouthKind = "neutral"
	MouthSmile   MouthKind = "smile"
	MouthOpen    MouthKind = "open"
)

// Style is the per-identity style descriptor: multiplicative RGB tint
// factors for the whole-frame stylization path plus the preferred mouth
// expression. A single explicit table replaces identity-string branching.
type Style struct {
	TintR float64
	TintG float64
	TintB float64
	Mouth MouthKind
}

// styles is the closed set of known identities.
var styles = map[string]Style{
	"einstein":    {TintR: 1.1, TintG: 1.0, TintB: 0.9, Mouth: MouthSmile},
	"monalisa":    {TintR: 1.05, TintG: 1.02, TintB: 0.92, Mouth: MouthNeutral},
	"cleopatra":   {TintR: 1.08, TintG: 0.98, TintB: 0.85, Mouth: MouthNeutral},
	"shakespeare": {TintR: 1.0, TintG: 0.97, TintB: 0.88, Mouth: MouthOpen},
	"frida":       {TintR: 1.12, TintG: 0.95, TintB: 0.95, Mouth: MouthSmile},
}

// Default returns the neutral style used for unrecognized identity ids.
func Default() Style {
	return Style{TintR: 1.0, TintG: 1.0, TintB: 1.0, Mouth: MouthNeutral}
}

// Lookup returns the style for an identity id. Unknown ids get the neutral
// default and ok=false.
func Lookup(id string) (Style, bool) {
	s, ok := styles[id]
	if !ok {
		return Default(), false
	}
	return s, true
}

// IDs returns the known identity ids in no particular order.
func IDs() []string {
	ids := make([]string, 0, len(styles))
	for id := range styles {
		ids = append(ids, id)
	}
	return ids
}
