package gaia

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// tapServer serves canned cone-search rows in the TAP json layout. Each row
// is [source_id, parallax, parallax_error, g mag/flux/fluxerr, bp ..., rp ..., dist].
func tapServer(t *testing.T, rows [][]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if lang := r.Form.Get("LANG"); lang != "ADQL" {
			t.Fatalf("unexpected LANG: %q", lang)
		}
		if !strings.Contains(r.Form.Get("QUERY"), "ORDER BY dist ASC") {
			t.Fatalf("query missing distance ordering: %s", r.Form.Get("QUERY"))
		}

		names := append([]string{}, coneColumns...)
		names = append(names, "dist")
		meta := make([]string, 0, len(names))
		for _, name := range names {
			meta = append(meta, fmt.Sprintf("{\"name\":%q}", name))
		}
		data := make([]string, 0, len(rows))
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				switch v := cell.(type) {
				case nil:
					cells = append(cells, "null")
				case float64:
					cells = append(cells, fmt.Sprintf("%g", v))
				case int:
					cells = append(cells, fmt.Sprintf("%d", v))
				default:
					t.Fatalf("unsupported cell type %T", cell)
				}
			}
			data = append(data, "["+strings.Join(cells, ",")+"]")
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "{\"metadata\":[%s],\"data\":[%s]}",
			strings.Join(meta, ","), strings.Join(data, ","))
	}))
}

func brightRow() []any {
	// A well-behaved bright star: G=12, 1% flux errors, parallax 10 mas.
	return []any{
		4472832130942575872, 10.0, 0.05,
		12.0, 1.0e5, 1.0e3,
		12.4, 5.0e4, 5.0e2,
		11.4, 8.0e4, 8.0e2,
		0.5 / 3600.0,
	}
}

func TestLookupBuildsRecord(t *testing.T) {
	server := tapServer(t, [][]any{brightRow()})
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	rec, err := Lookup(context.Background(), client, Coord{RA: 120.0, Dec: -30.0}, LookupOptions{})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	wantPlx := 10.0 + parallaxZeroPoint
	if math.Abs(rec.Parallax.Value-wantPlx) > 1e-12 {
		t.Fatalf("parallax = %v, want %v", rec.Parallax.Value, wantPlx)
	}
	wantPlxErr := math.Sqrt(0.05*0.05 + parallaxSystematic*parallaxSystematic)
	if math.Abs(rec.Parallax.Err-wantPlxErr) > 1e-12 {
		t.Fatalf("parallax err = %v, want %v", rec.Parallax.Err, wantPlxErr)
	}

	for _, band := range Bands {
		m, ok := rec.Band(band)
		if !ok || !m.Finite() {
			t.Fatalf("band %s missing or non-finite: %+v", band, m)
		}
	}
	g := rec.Photometry["G"]
	wantErr := magErrFactor * 1.0e3 / 1.0e5
	if math.Abs(g.Err-wantErr) > 1e-15 {
		t.Fatalf("G mag err = %v, want %v", g.Err, wantErr)
	}

	if !rec.HasMaxDistance() {
		t.Fatal("expected max distance bound for positive parallax")
	}
	if math.Abs(rec.MaxDistance-2000.0/wantPlx) > 1e-9 {
		t.Fatalf("max distance = %v, want %v", rec.MaxDistance, 2000.0/wantPlx)
	}
}

func TestLookupMagErrorInvertible(t *testing.T) {
	server := tapServer(t, [][]any{brightRow()})
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	rec, err := Lookup(context.Background(), client, Coord{}, LookupOptions{})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	// Reconstructing the flux-relative error from the magnitude error must
	// recover the catalog input.
	got := rec.Photometry["G"].Err / magErrFactor
	want := 1.0e3 / 1.0e5
	if math.Abs(got-want) > 1e-15 {
		t.Fatalf("recovered relative flux error %v, want %v", got, want)
	}
}

func TestLookupDeterministic(t *testing.T) {
	server := tapServer(t, [][]any{brightRow()})
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	first, err := Lookup(context.Background(), client, Coord{}, LookupOptions{})
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := Lookup(context.Background(), client, Coord{}, LookupOptions{})
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if first.Parallax != second.Parallax {
		t.Fatalf("parallax differs between identical lookups: %+v vs %+v", first.Parallax, second.Parallax)
	}
	for _, band := range Bands {
		if first.Photometry[band] != second.Photometry[band] {
			t.Fatalf("band %s differs between identical lookups", band)
		}
	}
}

func TestLookupNoMatch(t *testing.T) {
	server := tapServer(t, nil)
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := Lookup(context.Background(), client, Coord{}, LookupOptions{})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestLookupMagnitudeFilterEliminatesAll(t *testing.T) {
	server := tapServer(t, [][]any{brightRow()})
	defer server.Close()

	approx := 5.0
	client := NewClient(server.URL, server.Client())
	_, err := Lookup(context.Background(), client, Coord{}, LookupOptions{
		ApproxMag: &approx,
		MagTol:    0.1,
	})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch after magnitude filtering, got %v", err)
	}
}

func TestLookupMagnitudeFilterKeepsNearby(t *testing.T) {
	server := tapServer(t, [][]any{brightRow()})
	defer server.Close()

	approx := 12.3
	client := NewClient(server.URL, server.Client())
	if _, err := Lookup(context.Background(), client, Coord{}, LookupOptions{ApproxMag: &approx}); err != nil {
		t.Fatalf("lookup with default tolerance: %v", err)
	}
}

func TestLookupNonFiniteParallax(t *testing.T) {
	row := brightRow()
	row[1] = nil // parallax null in the catalog
	server := tapServer(t, [][]any{row})
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := Lookup(context.Background(), client, Coord{}, LookupOptions{})
	if !errors.Is(err, ErrNonFiniteParallax) {
		t.Fatalf("expected ErrNonFiniteParallax, got %v", err)
	}
}

func TestLookupNonFinitePhotometry(t *testing.T) {
	row := brightRow()
	row[7] = 0.0 // bp flux zero makes the relative error blow up
	server := tapServer(t, [][]any{row})
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := Lookup(context.Background(), client, Coord{}, LookupOptions{})
	if !errors.Is(err, ErrNonFinitePhotometry) {
		t.Fatalf("expected ErrNonFinitePhotometry, got %v", err)
	}
}

func TestLookupMergesExtraFields(t *testing.T) {
	server := tapServer(t, [][]any{brightRow()})
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	rec, err := Lookup(context.Background(), client, Coord{}, LookupOptions{
		Extra: map[string]float64{"feh": -0.2, "feh_err": 0.1},
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Extra["feh"] != -0.2 || rec.Extra["feh_err"] != 0.1 {
		t.Fatalf("extra fields not merged: %+v", rec.Extra)
	}
}

func TestLookupExtraOverridesMaxDistance(t *testing.T) {
	server := tapServer(t, [][]any{brightRow()})
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	rec, err := Lookup(context.Background(), client, Coord{}, LookupOptions{
		Extra: map[string]float64{"max_distance": 50.0},
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	// Caller-supplied fields take precedence over computed ones.
	if rec.MaxDistance != 50.0 {
		t.Fatalf("max_distance = %v, want caller override 50", rec.MaxDistance)
	}
	if _, leaked := rec.Extra["max_distance"]; leaked {
		t.Fatalf("override duplicated in extras: %+v", rec.Extra)
	}
}

func TestLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := Lookup(context.Background(), client, Coord{}, LookupOptions{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if IsSkippable(err) {
		t.Fatalf("transport errors must not be skippable: %v", err)
	}
}
