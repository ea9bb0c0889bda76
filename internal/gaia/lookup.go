package gaia

import (
	"context"
	"fmt"
	"math"
)

// Parallax zero-point correction and systematic error floor, both in mas,
// from the Lindegren et al. DR2 astrometry calibration (arXiv:1805.03526).
const (
	parallaxZeroPoint  = 0.082
	parallaxSystematic = 0.033
)

// magErrFactor converts a flux-relative error to a magnitude error by linear
// propagation. Adequate for bright sources.
const magErrFactor = 2.5 / math.Ln10

// LookupOptions controls candidate selection during Lookup.
type LookupOptions struct {
	// ApproxMag, when set, restricts candidates to catalog G magnitudes
	// within MagTol of this value. Guards against cross-matching to an
	// unrelated neighbor.
	ApproxMag *float64
	// MagTol is the magnitude tolerance for ApproxMag filtering.
	// Defaults to 1.0.
	MagTol float64
	// RadiusArcsec is the cone-search radius. Defaults to 20 arcsec.
	RadiusArcsec float64
	// Extra fields are merged into the returned record, last write wins.
	Extra map[string]float64
}

func (o *LookupOptions) normalize() {
	if o.RadiusArcsec <= 0 {
		o.RadiusArcsec = 20
	}
	if o.MagTol <= 0 {
		o.MagTol = 1.0
	}
}

// Lookup cross-matches the coordinates to a single Gaia source and builds a
// measurement record for isochrone fitting.
//
// Selection takes the first remaining candidate after the optional magnitude
// filter; the service orders results nearest-first.
func Lookup(ctx context.Context, client *Client, coord Coord, opts LookupOptions) (*Record, error) {
	opts.normalize()

	rows, err := client.ConeSearch(ctx, coord, opts.RadiusArcsec)
	if err != nil {
		return nil, err
	}

	if opts.ApproxMag != nil {
		kept := rows[:0]
		for _, row := range rows {
			if math.Abs(row.G.Mag-*opts.ApproxMag) < opts.MagTol {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	if len(rows) == 0 {
		return nil, ErrNoMatch
	}

	return ParseSourceRow(rows[0], opts.Extra)
}

// ParseSourceRow converts one catalog candidate into a validated measurement
// record: parallax zero-point correction, flux-to-magnitude error
// propagation, distance prior bound, and extra-field merge.
func ParseSourceRow(row SourceRow, extra map[string]float64) (*Record, error) {
	plx := row.Parallax + parallaxZeroPoint
	plxErr := math.Sqrt(row.ParallaxErr*row.ParallaxErr + parallaxSystematic*parallaxSystematic)
	if !finite(plx) || !finite(plxErr) {
		return nil, ErrNonFiniteParallax
	}

	rec := &Record{
		Photometry: make(map[string]Measurement, len(Bands)),
		Parallax:   Measurement{Value: plx, Err: plxErr},
	}
	for _, band := range Bands {
		sb := row.band(band)
		magErr := magErrFactor * sb.FluxErr / sb.Flux
		if !finite(sb.Mag) || !finite(magErr) {
			return nil, fmt.Errorf("%w: band %s", ErrNonFinitePhotometry, band)
		}
		rec.Photometry[band] = Measurement{Value: sb.Mag, Err: magErr}
	}

	if plx > 0 {
		rec.MaxDistance = math.Max(2000.0/plx, 100.0)
	}

	if len(extra) > 0 {
		rec.Extra = make(map[string]float64, len(extra))
		for key, value := range extra {
			// Caller-supplied fields win over computed ones.
			if key == "max_distance" {
				rec.MaxDistance = value
				continue
			}
			rec.Extra[key] = value
		}
		if len(rec.Extra) == 0 {
			rec.Extra = nil
		}
	}
	return rec, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
