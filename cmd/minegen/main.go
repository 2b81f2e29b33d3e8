// Command minegen generates a Minesweeper mine layout solvable from a given
// starting cell without guessing.
//
// Usage:
//
//	minegen H W M startRow startCol
//
// On success it prints one "row,col" pair per mine, in row-major order, and
// exits 0. On failure it prints a diagnostic to stderr and exits 1.
package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/rybkr/minegen/internal/board"
	"github.com/rybkr/minegen/internal/generator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "minegen:", err)
		os.Exit(1)
	}
}

func run() error {
	args := strings.Fields(strings.Join(os.Args[1:], " "))
	if len(args) != 5 {
		return fmt.Errorf("usage: minegen H W M startRow startCol (got %d arguments)", len(args))
	}

	vals := make([]int, 5)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid integer argument %q: %w", a, err)
		}
		vals[i] = v
	}
	h, w, mines, sr, sc := vals[0], vals[1], vals[2], vals[3], vals[4]

	if err := board.ValidateDims(h, w, mines); err != nil {
		return err
	}
	if sr < 0 || sr >= h || sc < 0 || sc >= w {
		return fmt.Errorf("%w: start (%d,%d) out of bounds for a %dx%d board", board.ErrInvalidPosition, sr, sc, h, w)
	}

	seed, err := systemSeed()
	if err != nil {
		return fmt.Errorf("reading entropy source: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))

	gen, err := generator.New(h, w, sr, sc, mines, rng, nil)
	if err != nil {
		return err
	}

	if err := gen.Generate(context.Background()); err != nil {
		if errors.Is(err, generator.ErrGenerationFailed) {
			return err
		}
		return fmt.Errorf("generation aborted: %w", err)
	}

	b := gen.Board()
	var sb strings.Builder
	for pos := 0; pos < h*w; pos++ {
		if b.IsMine(pos) {
			row, col := b.RowCol(pos)
			fmt.Fprintf(&sb, "%d,%d\n", row, col)
		}
	}
	fmt.Print(sb.String())
	return nil
}

func systemSeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}
