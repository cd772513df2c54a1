package geom_test

import (
	"math"
	"testing"

	"flareader/internal/geom"
)

func TestComposeWithIdentityIsNoop(t *testing.T) {
	cases := []geom.Matrix{
		geom.Identity(),
		{A: 2, B: 0.5, C: -0.25, D: 3, TX: 10, TY: -4},
		{A: 0, B: 1, C: -1, D: 0, TX: 100, TY: 200},
	}
	for _, m := range cases {
		if got := geom.Compose(geom.Identity(), m); got != m {
			t.Fatalf("identity ∘ m: got %+v want %+v", got, m)
		}
		if got := geom.Compose(m, geom.Identity()); got != m {
			t.Fatalf("m ∘ identity: got %+v want %+v", got, m)
		}
	}
}

func TestComposeTranslations(t *testing.T) {
	parent := geom.Matrix{A: 2, D: 2, TX: 10, TY: 20}
	child := geom.Matrix{A: 1, D: 1, TX: 5, TY: 5}
	got := geom.Compose(parent, child)
	want := geom.Matrix{A: 2, D: 2, TX: 20, TY: 30}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	p := got.Apply(geom.Point{X: 1, Y: 1})
	if p.X != 22 || p.Y != 32 {
		t.Fatalf("unexpected applied point %+v", p)
	}
}

func TestResolveExplicitMatrixWins(t *testing.T) {
	ancestor := geom.Matrix{A: 1, D: 1, TX: 50, TY: 50}
	own := geom.Matrix{A: 1, D: 1, TX: 3, TY: 4}
	if got := geom.Resolve(&own, ancestor); got != own {
		t.Fatalf("explicit matrix should be used as-is, got %+v", got)
	}
	if got := geom.Resolve(nil, ancestor); got != ancestor {
		t.Fatalf("missing matrix should inherit ancestor, got %+v", got)
	}
}

func TestSanitizeReplacesNonFinite(t *testing.T) {
	m := geom.Matrix{A: math.NaN(), B: math.Inf(1), C: 2, D: math.Inf(-1), TX: math.NaN(), TY: 7}
	got := m.Sanitize()
	want := geom.Matrix{A: 1, B: 0, C: 2, D: 1, TX: 0, TY: 7}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
