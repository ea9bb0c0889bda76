package gaia

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Bands is the fixed set of Gaia photometric bands used throughout the fit.
var Bands = []string{"G", "BP", "RP"}

// Measurement is a value with its one-sigma uncertainty.
type Measurement struct {
	Value float64
	Err   float64
}

// Finite reports whether both the value and its uncertainty are finite.
func (m Measurement) Finite() bool {
	return !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0) &&
		!math.IsNaN(m.Err) && !math.IsInf(m.Err, 0)
}

// Record holds the photometric and astrometric measurements for one star.
// It is immutable once constructed; per-evaluation error inflation during
// the fit operates on override maps, never on the record itself.
type Record struct {
	// Photometry maps band name (G, BP, RP) to apparent magnitude and its
	// uncertainty.
	Photometry map[string]Measurement
	// Parallax carries the zero-point-corrected parallax in mas.
	Parallax Measurement
	// MaxDistance is a heuristic distance prior bound in parsecs, set only
	// when the corrected parallax is positive.
	MaxDistance float64
	// Extra carries caller-supplied scalar fields merged into the record.
	Extra map[string]float64
}

// Band returns the measurement for the named band.
func (r *Record) Band(name string) (Measurement, bool) {
	m, ok := r.Photometry[name]
	return m, ok
}

// HasMaxDistance reports whether a distance prior bound was attached.
func (r *Record) HasMaxDistance() bool {
	return r.MaxDistance > 0
}

// Validate checks that every numeric field in the record is finite.
func (r *Record) Validate() error {
	for _, band := range Bands {
		m, ok := r.Photometry[band]
		if !ok {
			return fmt.Errorf("%w: missing band %s", ErrNonFinitePhotometry, band)
		}
		if !m.Finite() {
			return fmt.Errorf("%w: band %s", ErrNonFinitePhotometry, band)
		}
	}
	if !r.Parallax.Finite() {
		return ErrNonFiniteParallax
	}
	for key, value := range r.Extra {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("gaia: non-finite extra field %q", key)
		}
	}
	return nil
}

// MarshalJSON renders the record in the provenance layout written to
// gaia.json: bands and parallax as [value, err] pairs, max_distance and
// extras as scalars. Extra keys win on collision with computed fields.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Photometry)+len(r.Extra)+2)
	for band, m := range r.Photometry {
		out[band] = [2]float64{m.Value, m.Err}
	}
	out["parallax"] = [2]float64{r.Parallax.Value, r.Parallax.Err}
	if r.HasMaxDistance() {
		out["max_distance"] = r.MaxDistance
	}
	for key, value := range r.Extra {
		out[key] = value
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the gaia.json layout produced by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse record: %w", err)
	}

	known := map[string]bool{"parallax": true, "max_distance": true}
	for _, band := range Bands {
		known[band] = true
	}

	r.Photometry = make(map[string]Measurement, len(Bands))
	for _, band := range Bands {
		msg, ok := raw[band]
		if !ok {
			continue
		}
		var pair [2]float64
		if err := json.Unmarshal(msg, &pair); err != nil {
			return fmt.Errorf("parse band %s: %w", band, err)
		}
		r.Photometry[band] = Measurement{Value: pair[0], Err: pair[1]}
	}
	if msg, ok := raw["parallax"]; ok {
		var pair [2]float64
		if err := json.Unmarshal(msg, &pair); err != nil {
			return fmt.Errorf("parse parallax: %w", err)
		}
		r.Parallax = Measurement{Value: pair[0], Err: pair[1]}
	}
	if msg, ok := raw["max_distance"]; ok {
		if err := json.Unmarshal(msg, &r.MaxDistance); err != nil {
			return fmt.Errorf("parse max_distance: %w", err)
		}
	}

	extraKeys := make([]string, 0, len(raw))
	for key := range raw {
		if !known[key] {
			extraKeys = append(extraKeys, key)
		}
	}
	sort.Strings(extraKeys)
	if len(extraKeys) > 0 {
		r.Extra = make(map[string]float64, len(extraKeys))
		for _, key := range extraKeys {
			var value float64
			if err := json.Unmarshal(raw[key], &value); err != nil {
				return fmt.Errorf("parse extra field %q: %w", key, err)
			}
			r.Extra[key] = value
		}
	}
	return nil
}
