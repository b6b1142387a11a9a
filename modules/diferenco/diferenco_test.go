package diferenco

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/antgroup/zeta-ort/modules/diferenco/color"
)

func TestDiff(t *testing.T) {
	textA := "hello\nworld\n\nfoo\n"
	textB := "hello\nnovel\nworld\n\nfoo bar\n"
	aa := []Algorithm{Histogram, Myers, ONP, Patience, Minimal}
	for _, a := range aa {
		now := time.Now()
		u, err := DoUnified(context.Background(), &Options{
			From: &File{Path: "a.txt"},
			To:   &File{Path: "b.txt"},
			A:    textA,
			B:    textB,
			Algo: a,
		})
		if err != nil {
			t.Fatalf("%s: DoUnified: %v", a, err)
		}
		fmt.Fprintf(os.Stderr, "\x1b[32m%s --> use time: %v\x1b[0m\n%s\n", a, time.Since(now), u)
	}
}

func TestPatch(t *testing.T) {
	textA := "line one\nline two\nline three\n"
	textB := "line one\nline TWO\nline three\nline four\n"
	u, err := DoUnified(context.Background(), &Options{
		From: &File{Path: "a.txt", Hash: "4789568", Mode: 0o100644},
		To:   &File{Path: "b.txt", Hash: "6547898", Mode: 0o100644},
		A:    textA,
		B:    textB,
	})
	if err != nil {
		t.Fatalf("DoUnified: %v", err)
	}
	if len(u.Hunks) == 0 {
		t.Fatalf("expected at least one hunk")
	}
	e := NewUnifiedEncoder(os.Stderr)
	e.SetColor(color.NewColorConfig())
	if err := e.Encode([]*Unified{u}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestPatchNew(t *testing.T) {
	u, err := DoUnified(context.Background(), &Options{
		From: nil,
		To:   &File{Path: "a.txt", Hash: "6547898", Mode: 0o100644},
		A:    "",
		B:    "line one\nline two\n",
	})
	if err != nil {
		t.Fatalf("DoUnified: %v", err)
	}
	e := NewUnifiedEncoder(os.Stderr)
	e.SetColor(color.NewColorConfig())
	_ = e.Encode([]*Unified{u})
}

func TestPatchDelete(t *testing.T) {
	u, err := DoUnified(context.Background(), &Options{
		From: &File{Path: "a.txt", Hash: "6547898", Mode: 0o100644},
		To:   nil,
		A:    "line one\nline two\n",
		B:    "",
	})
	if err != nil {
		t.Fatalf("DoUnified: %v", err)
	}
	e := NewUnifiedEncoder(os.Stderr)
	e.SetColor(color.NewColorConfig())
	_ = e.Encode([]*Unified{u})
}

func TestShowPatch(t *testing.T) {
	patch := []*Unified{
		{
			From: &File{
				Path: "docs/a.png",
				Hash: "1ab12893fc666524ed79caae503e12c20a748e2f92db7730c8be09d981970f96",
				Mode: 33188,
			},
			IsBinary: true,
		},
		{
			To: &File{
				Path: "images/windows7.iso",
				Hash: "adba50d9794b9ef3f7ec8cbc680f7f1fa3fbf9df0ac8d1f9b9ccab6d941bc11b",
				Mode: 33188,
			},
			IsBinary: true,
		},
	}
	e := NewUnifiedEncoder(os.Stderr)
	e.SetColor(color.NewColorConfig())
	if err := e.Encode(patch); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestAlgorithmFromName(t *testing.T) {
	cases := map[string]Algorithm{
		"":          Unspecified,
		"histogram": Histogram,
		"myers":     Myers,
		"onp":       ONP,
		"patience":  Patience,
		"minimal":   Minimal,
	}
	for name, want := range cases {
		got, err := AlgorithmFromName(name)
		if err != nil {
			t.Fatalf("AlgorithmFromName(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("AlgorithmFromName(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := AlgorithmFromName("bogus"); err == nil {
		t.Fatalf("expected error for unsupported algorithm name")
	}
}

func TestDoUnifiedIdenticalContent(t *testing.T) {
	text := "alpha\nbeta\ngamma\ndelta\n"
	for _, a := range []Algorithm{Histogram, Myers, ONP, Patience, Minimal} {
		u, err := DoUnified(context.Background(), &Options{
			From: &File{Path: "a.txt"},
			To:   &File{Path: "b.txt"},
			A:    text,
			B:    text,
			Algo: a,
		})
		if err != nil {
			t.Fatalf("%s: DoUnified: %v", a, err)
		}
		if len(u.Hunks) != 0 {
			t.Errorf("%s: expected no hunks for identical content, got %d", a, len(u.Hunks))
		}
	}
}
