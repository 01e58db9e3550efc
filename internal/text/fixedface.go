package text

// FixedFace is a deterministic Face for tests: every rune advances by the
// same amount and the vertical metrics are given directly.
type FixedFace struct {
	AdvancePx float64
	AscentPx  float64
	DescentPx float64
	HeightPx  float64
}

func (f FixedFace) Metrics() Metrics {
	return Metrics{Ascent: f.AscentPx, Descent: f.DescentPx, Height: f.HeightPx}
}

func (f FixedFace) Advance(rune) float64 {
	return f.AdvancePx
}
