package nested

import (
	"context"
	"math"
	"math/rand"
	"testing"
)

// Toy problem with an analytic answer: a normalized 2-D Gaussian likelihood
// under a uniform prior on [-5, 5]^2 has evidence exactly 1/100.
func gaussianToy() (LogLikeFunc, PriorTransformFunc, int, float64) {
	const sigma = 0.5
	logLike := func(theta []float64) float64 {
		r2 := theta[0]*theta[0] + theta[1]*theta[1]
		return -0.5*r2/(sigma*sigma) - math.Log(2*math.Pi*sigma*sigma)
	}
	prior := func(cube []float64) []float64 {
		return []float64{-5 + 10*cube[0], -5 + 10*cube[1]}
	}
	return logLike, prior, 2, -math.Log(100)
}

func TestRunRecoversGaussianEvidence(t *testing.T) {
	logLike, prior, ndim, wantLogZ := gaussianToy()

	res, err := Run(context.Background(), logLike, prior, ndim, Options{
		NLive: 400,
		DLogZ: 0.01,
		Walks: 20,
		Seed:  42,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	gotLogZ := res.FinalLogZ()
	if math.Abs(gotLogZ-wantLogZ) > 0.5 {
		t.Fatalf("logZ = %v, want %v within 0.5 (logzerr %v)", gotLogZ, wantLogZ, res.FinalLogZErr())
	}
	if res.FinalLogZErr() <= 0 {
		t.Fatalf("logzerr = %v, want positive", res.FinalLogZErr())
	}

	// Normalized weights must form a distribution.
	sum := 0.0
	for _, w := range res.Weights() {
		sum += w
	}
	if math.Abs(sum-1) > 0.05 {
		t.Fatalf("posterior weights sum to %v, want 1", sum)
	}

	// Posterior mean should sit at the origin.
	weights := res.Weights()
	var mx, my float64
	for i, row := range res.Samples {
		mx += weights[i] * row[0]
		my += weights[i] * row[1]
	}
	if math.Abs(mx) > 0.1 || math.Abs(my) > 0.1 {
		t.Fatalf("posterior mean (%v, %v), want near origin", mx, my)
	}
}

func TestRunDiagnostics(t *testing.T) {
	logLike, prior, ndim, _ := gaussianToy()

	res, err := Run(context.Background(), logLike, prior, ndim, Options{
		NLive: 100,
		Walks: 10,
		Seed:  7,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.NLive != 100 {
		t.Fatalf("nlive = %d, want 100", res.NLive)
	}
	if res.NIter <= 0 {
		t.Fatal("no iterations recorded")
	}
	if len(res.Samples) != res.NIter+res.NLive {
		t.Fatalf("trace length %d, want %d dead + %d live", len(res.Samples), res.NIter, res.NLive)
	}
	if res.TotalCalls() < res.NIter {
		t.Fatalf("total calls %d below iteration count %d", res.TotalCalls(), res.NIter)
	}
	if res.Eff <= 0 || res.Eff > 100 {
		t.Fatalf("efficiency %v outside (0, 100]", res.Eff)
	}

	// Evidence trajectory is monotone nondecreasing.
	for i := 1; i < len(res.LogZ); i++ {
		if res.LogZ[i] < res.LogZ[i-1]-1e-12 {
			t.Fatalf("logZ decreased at %d: %v -> %v", i, res.LogZ[i-1], res.LogZ[i])
		}
	}
}

func TestRunSeedReproducible(t *testing.T) {
	logLike, prior, ndim, _ := gaussianToy()
	opts := Options{NLive: 80, Walks: 10, Seed: 99}

	first, err := Run(context.Background(), logLike, prior, ndim, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run(context.Background(), logLike, prior, ndim, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.FinalLogZ() != second.FinalLogZ() {
		t.Fatalf("seeded runs disagree: %v vs %v", first.FinalLogZ(), second.FinalLogZ())
	}
	if first.NIter != second.NIter {
		t.Fatalf("seeded runs iterate differently: %d vs %d", first.NIter, second.NIter)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	logLike, prior, ndim, _ := gaussianToy()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, logLike, prior, ndim, Options{NLive: 50, Seed: 1})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestRunImpossibleLikelihood(t *testing.T) {
	logLike := func([]float64) float64 { return math.Inf(-1) }
	prior := func(cube []float64) []float64 { return cube }

	_, err := Run(context.Background(), logLike, prior, 1, Options{NLive: 10, Seed: 1})
	if err == nil {
		t.Fatal("expected ErrNoLivePoint")
	}
}

func TestResampleEqualProperties(t *testing.T) {
	samples := [][]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}}
	weights := []float64{0.7, 0.1, 0.1, 0.1}
	rnd := rand.New(rand.NewSource(3))

	out, err := ResampleEqual(samples, weights, 1000, rnd)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	if len(out) != 1000 {
		t.Fatalf("got %d rows, want 1000", len(out))
	}

	counts := map[float64]int{}
	for _, row := range out {
		// Every output row must be one of the inputs, not a blend.
		found := false
		for _, src := range samples {
			if row[0] == src[0] && row[1] == src[1] {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("row %v is not an input row", row)
		}
		counts[row[0]]++
	}

	if counts[1] < 600 || counts[1] > 800 {
		t.Fatalf("dominant row drawn %d times, want about 700", counts[1])
	}
}

func TestResampleEqualDefaultsToInputSize(t *testing.T) {
	samples := [][]float64{{1}, {2}, {3}}
	weights := []float64{1, 1, 1}
	rnd := rand.New(rand.NewSource(5))

	out, err := ResampleEqual(samples, weights, 0, rnd)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	if len(out) != len(samples) {
		t.Fatalf("got %d rows, want %d", len(out), len(samples))
	}
}

func TestResampleEqualRejectsBadWeights(t *testing.T) {
	samples := [][]float64{{1}, {2}}
	if _, err := ResampleEqual(samples, []float64{1}, 2, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if _, err := ResampleEqual(samples, []float64{0, 0}, 2, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected zero-weight error")
	}
	if _, err := ResampleEqual(samples, []float64{-1, 2}, 2, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected negative-weight error")
	}
}
