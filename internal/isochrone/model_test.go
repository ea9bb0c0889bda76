package isochrone

import (
	"math"
	"testing"

	"isofit/internal/gaia"
)

func testRecord() *gaia.Record {
	return &gaia.Record{
		Photometry: map[string]gaia.Measurement{
			"G":  {Value: 10.5, Err: 0.01},
			"BP": {Value: 10.85, Err: 0.02},
			"RP": {Value: 10.0, Err: 0.015},
		},
		Parallax:    gaia.Measurement{Value: 8.0, Err: 0.08},
		MaxDistance: 250.0,
	}
}

func TestPriorTransformRanges(t *testing.T) {
	model := New(testRecord())

	corners := [][]float64{
		{1e-9, 1e-9, 1e-9, 1e-9, 1e-9},
		{1 - 1e-9, 1 - 1e-9, 1 - 1e-9, 1 - 1e-9, 1 - 1e-9},
		{0.5, 0.5, 0.5, 0.5, 0.5},
	}
	for _, cube := range corners {
		theta := model.PriorTransform(cube)
		if len(theta) != model.NParams() {
			t.Fatalf("transform returned %d params, want %d", len(theta), model.NParams())
		}
		mass, logAge, feh, dist, av := theta[0], theta[1], theta[2], theta[3], theta[4]
		if mass < minMass || mass > maxMass {
			t.Fatalf("mass %v outside [%v, %v]", mass, minMass, maxMass)
		}
		if logAge < minLogAge || logAge > maxLogAge {
			t.Fatalf("log age %v outside range", logAge)
		}
		if math.IsNaN(feh) || math.IsInf(feh, 0) {
			t.Fatalf("feh not finite: %v", feh)
		}
		if dist < 0 || dist > model.MaxDistance() {
			t.Fatalf("distance %v outside [0, %v]", dist, model.MaxDistance())
		}
		if av < 0 || av > defaultMaxAV {
			t.Fatalf("AV %v outside [0, %v]", av, defaultMaxAV)
		}
	}

	mid := model.PriorTransform([]float64{0.5, 0.5, 0.5, 0.5, 0.5})
	if math.Abs(mid[2]) > 1e-9 {
		t.Fatalf("median feh = %v, want 0", mid[2])
	}
	if math.Abs(mid[0]-1.0) > 1e-9 {
		t.Fatalf("median mass = %v, want 1 (log-uniform on [0.1, 10])", mid[0])
	}
}

func TestPriorTransformFehWidth(t *testing.T) {
	model := New(testRecord())

	// One sigma above the median of a Gaussian lies at quantile 0.8413;
	// the metallicity prior is centered at 0 with a 0.2 dex width.
	theta := model.PriorTransform([]float64{0.5, 0.5, 0.841344746068543, 0.5, 0.5})
	if math.Abs(theta[2]-0.2) > 1e-6 {
		t.Fatalf("one-sigma feh = %v, want 0.2", theta[2])
	}
}

func TestEvolveBounds(t *testing.T) {
	if _, ok := evolve(1.0, 9.5, 0.0); !ok {
		t.Fatal("solar-like star on the grid rejected")
	}
	if _, ok := evolve(0.05, 9.5, 0.0); ok {
		t.Fatal("mass below grid accepted")
	}
	// A 5 Msun star is long dead at 10 Gyr.
	if _, ok := evolve(5.0, 10.0, 0.0); ok {
		t.Fatal("post-main-sequence state accepted")
	}
}

func TestEvolveSolarCalibration(t *testing.T) {
	point, ok := evolve(1.0, 9.0, 0.0)
	if !ok {
		t.Fatal("young sun off grid")
	}
	if point.teff < 5000 || point.teff > 6600 {
		t.Fatalf("young sun teff = %v, expected near solar", point.teff)
	}
	if point.radius < 0.9 || point.radius > 1.2 {
		t.Fatalf("young sun radius = %v, expected near 1", point.radius)
	}
	if math.Abs(point.logg-4.438) > 0.2 {
		t.Fatalf("young sun logg = %v, expected near 4.44", point.logg)
	}
}

func TestLogPosteriorOffGridIsImpossible(t *testing.T) {
	model := New(testRecord())
	lp := model.LogPosterior([]float64{5.0, 10.0, 0.0, 125.0, 0.05}, nil)
	if !math.IsInf(lp, -1) {
		t.Fatalf("off-grid log posterior = %v, want -Inf", lp)
	}
	lp = model.LogPosterior([]float64{1.0, 9.5, 0.0, -10.0, 0.05}, nil)
	if !math.IsInf(lp, -1) {
		t.Fatalf("negative distance log posterior = %v, want -Inf", lp)
	}
}

func TestLogPosteriorErrOverride(t *testing.T) {
	model := New(testRecord())
	theta := []float64{1.0, 9.5, 0.0, 125.0, 0.05}

	base := model.LogPosterior(theta, nil)
	if math.IsInf(base, 0) || math.IsNaN(base) {
		t.Fatalf("base log posterior not finite: %v", base)
	}

	inflated := model.LogPosterior(theta, map[string]float64{"G": 1.0, "BP": 1.0, "RP": 1.0})
	if inflated == base {
		t.Fatal("error override had no effect")
	}
	if math.IsInf(inflated, 0) || math.IsNaN(inflated) {
		t.Fatalf("overridden log posterior not finite: %v", inflated)
	}
}

func TestDerivedParallaxDistanceRelation(t *testing.T) {
	model := New(testRecord())
	names := model.DerivedNames()
	idx := map[string]int{}
	for i, name := range names {
		idx[name] = i
	}

	for _, distance := range []float64{50.0, 125.0, 240.0} {
		row := model.Derived([]float64{1.0, 9.5, 0.0, distance, 0.05})
		if len(row) != len(names) {
			t.Fatalf("derived row has %d columns, want %d", len(row), len(names))
		}
		got := row[idx["parallax"]]
		want := 1000.0 / distance
		if math.Abs(got-want) > 1e-12*want {
			t.Fatalf("parallax = %v, want %v", got, want)
		}
		if row[idx["distance"]] != distance {
			t.Fatalf("distance column = %v, want %v", row[idx["distance"]], distance)
		}
	}
}

func TestDerivedMagnitudesRedden(t *testing.T) {
	model := New(testRecord())
	idx := map[string]int{}
	for i, name := range model.DerivedNames() {
		idx[name] = i
	}

	clear := model.Derived([]float64{1.0, 9.5, 0.0, 125.0, 0.0})
	dusty := model.Derived([]float64{1.0, 9.5, 0.0, 125.0, 0.5})

	for _, band := range []string{"G_mag", "BP_mag", "RP_mag"} {
		if dusty[idx[band]] <= clear[idx[band]] {
			t.Fatalf("%s did not dim under extinction: %v vs %v", band, dusty[idx[band]], clear[idx[band]])
		}
	}
	// BP suffers more extinction than RP.
	dBP := dusty[idx["BP_mag"]] - clear[idx["BP_mag"]]
	dRP := dusty[idx["RP_mag"]] - clear[idx["RP_mag"]]
	if dBP <= dRP {
		t.Fatalf("extinction ordering wrong: dBP=%v dRP=%v", dBP, dRP)
	}
}
