package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// CatalogRow is one canned cone-search candidate served by CatalogServer.
type CatalogRow struct {
	SourceID    int64
	Parallax    float64
	ParallaxErr float64
	GMag        float64
	GFlux       float64
	GFluxErr    float64
	BPMag       float64
	BPFlux      float64
	BPFluxErr   float64
	RPMag       float64
	RPFlux      float64
	RPFluxErr   float64
	DistDeg     float64
}

// BrightStarRow returns a well-behaved candidate: clean photometry with 1%
// flux errors and a solidly positive parallax.
func BrightStarRow() CatalogRow {
	return CatalogRow{
		SourceID: 4472832130942575872,
		Parallax: 10.0, ParallaxErr: 0.05,
		GMag: 12.0, GFlux: 1e5, GFluxErr: 1e3,
		BPMag: 12.4, BPFlux: 5e4, BPFluxErr: 5e2,
		RPMag: 11.4, RPFlux: 8e4, RPFluxErr: 8e2,
		DistDeg: 0.5 / 3600.0,
	}
}

// CatalogServer stands in for the TAP sync endpoint. The respond callback
// receives each ADQL query and returns the candidate rows to serve.
func CatalogServer(t testing.TB, respond func(query string) []CatalogRow) *httptest.Server {
	t.Helper()

	columns := []string{
		"source_id",
		"parallax", "parallax_error",
		"phot_g_mean_mag", "phot_g_mean_flux", "phot_g_mean_flux_error",
		"phot_bp_mean_mag", "phot_bp_mean_flux", "phot_bp_mean_flux_error",
		"phot_rp_mean_mag", "phot_rp_mean_flux", "phot_rp_mean_flux_error",
		"dist",
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		rows := respond(r.Form.Get("QUERY"))

		meta := make([]map[string]string, 0, len(columns))
		for _, name := range columns {
			meta = append(meta, map[string]string{"name": name})
		}
		data := make([][]float64, 0, len(rows))
		for _, row := range rows {
			data = append(data, []float64{
				float64(row.SourceID),
				row.Parallax, row.ParallaxErr,
				row.GMag, row.GFlux, row.GFluxErr,
				row.BPMag, row.BPFlux, row.BPFluxErr,
				row.RPMag, row.RPFlux, row.RPFluxErr,
				row.DistDeg,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"metadata": meta,
			"data":     data,
		}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}
