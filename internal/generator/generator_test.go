package generator

import (
	"context"
	"math/rand"
	"testing"
)

func TestNewRejectsInvalidDims(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := New(0, 5, 0, 0, 1, rng, nil); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestNewRejectsOutOfBoundsStart(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := New(5, 5, 5, 0, 1, rng, nil); err == nil {
		t.Error("expected error for out-of-bounds start row")
	}
}

func TestNewRejectsNilRNG(t *testing.T) {
	if _, err := New(5, 5, 0, 0, 1, nil, nil); err == nil {
		t.Error("expected error for nil rng")
	}
}

func TestInStartWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g, err := New(5, 5, 2, 2, 1, rng, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			pos := g.b.Index(2+dr, 2+dc)
			if !g.inStartWindow(pos) {
				t.Errorf("inStartWindow(%d,%d) = false, want true", 2+dr, 2+dc)
			}
		}
	}
	if g.inStartWindow(g.b.Index(0, 0)) {
		t.Error("inStartWindow(0,0) = true, want false (outside the 3x3 window)")
	}
}

func TestGenInitialAvoidsStartWindowAndMatchesMineCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g, err := New(5, 5, 2, 2, 4, rng, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := g.b.MineCount(); got != 4 {
		t.Errorf("MineCount() = %d, want 4", got)
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			pos := g.b.Index(2+dr, 2+dc)
			if g.b.IsMine(pos) {
				t.Errorf("mine placed at (%d,%d), inside the start window", 2+dr, 2+dc)
			}
		}
	}
}

// TestGenerateSingleMineSucceedsImmediately exercises the full Generate
// pipeline on a board with exactly one mine: wherever genInitial places it
// (always outside the start window), revealing the start cell floods the
// entire rest of the board in one pass, so Generate must succeed without
// ever calling shift.
func TestGenerateSingleMineSucceedsImmediately(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g, err := New(5, 5, 2, 2, 1, rng, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	b := g.Board()
	if got := b.MineCount(); got != 1 {
		t.Fatalf("MineCount() = %d, want 1", got)
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			pos := b.Index(2+dr, 2+dc)
			if b.IsMine(pos) {
				t.Fatalf("mine at (%d,%d) lies within the start window", 2+dr, 2+dc)
			}
		}
	}
}

func TestGenerateRespectsContextCancellation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g, err := New(5, 5, 2, 2, 10, rng, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = g.Generate(ctx)
	if err == nil {
		t.Fatal("expected an error from an already-cancelled context")
	}
}
