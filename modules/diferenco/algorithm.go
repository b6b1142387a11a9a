package diferenco

import (
	"context"
	"fmt"
)

// Algorithm selects the line-matching strategy used to compute a diff.
type Algorithm int

const (
	// Unspecified lets the caller fall back to a default algorithm.
	Unspecified Algorithm = iota
	Histogram
	Myers
	ONP
	Patience
	Minimal
)

func (a Algorithm) String() string {
	switch a {
	case Histogram:
		return "histogram"
	case Myers:
		return "myers"
	case ONP:
		return "onp"
	case Patience:
		return "patience"
	case Minimal:
		return "minimal"
	default:
		return "unspecified"
	}
}

// AlgorithmFromName parses the --diff-algorithm flag value.
func AlgorithmFromName(name string) (Algorithm, error) {
	switch name {
	case "", "default":
		return Unspecified, nil
	case "histogram":
		return Histogram, nil
	case "myers":
		return Myers, nil
	case "onp":
		return ONP, nil
	case "patience":
		return Patience, nil
	case "minimal":
		return Minimal, nil
	default:
		return Unspecified, fmt.Errorf("diferenco: unsupported diff algorithm %q", name)
	}
}

// dfioToChanges flattens a patience-style Delete/Insert/Equal run list into
// the positional Change hunks the rest of the package works with.
func dfioToChanges[E comparable](dfio []Dfio[E]) []Change {
	changes := make([]Change, 0, len(dfio))
	var posA, posB int
	i := 0
	for i < len(dfio) {
		switch dfio[i].T {
		case Equal:
			posA += len(dfio[i].E)
			posB += len(dfio[i].E)
			i++
		case Delete, Insert:
			startA, startB := posA, posB
			var del, ins int
			for i < len(dfio) && dfio[i].T != Equal {
				switch dfio[i].T {
				case Delete:
					del += len(dfio[i].E)
				case Insert:
					ins += len(dfio[i].E)
				}
				i++
			}
			posA += del
			posB += ins
			changes = append(changes, Change{P1: startA, P2: startB, Del: del, Ins: ins})
		default:
			i++
		}
	}
	return changes
}

// diffInternal dispatches to the concrete diff algorithm, presenting a
// single ctx/error-aware signature to callers regardless of which
// implementation is selected.
func diffInternal[E comparable](ctx context.Context, a, b []E, algo Algorithm) ([]Change, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	switch algo {
	case Myers:
		return MyersDiff(a, b), nil
	case ONP:
		return OnpDiff(a, b), nil
	case Patience:
		return dfioToChanges(PatienceDiff(a, b)), nil
	case Minimal:
		return MinimalDiff(ctx, a, b)
	case Histogram, Unspecified:
		return HistogramDiff(a, b), nil
	default:
		return HistogramDiff(a, b), nil
	}
}
