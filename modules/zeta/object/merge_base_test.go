package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// history:
//
//	A - B - C (ours)
//	     \
//	      D - E (theirs)
func TestMergeBaseCommonAncestor(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	a := NewTestCommit("a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1", "A")
	b := NewTestCommit("b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2", "B", a)
	c := NewTestCommit("c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3", "C", b)
	d := NewTestCommit("d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4", "D", b)
	e := NewTestCommit("e5e5e5e5e5e5e5e5e5e5e5e5e5e5e5e5e5e5e5e5", "E", d)

	for _, cm := range []*Commit{a, b, c, d, e} {
		backend.AddCommit(cm)
	}

	bases, err := c.MergeBase(ctx, e)
	require.NoError(t, err)
	require.Len(t, bases, 1)
	require.Equal(t, b.Hash, bases[0].Hash)
}

func TestMergeBaseSelf(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()
	a := NewTestCommit("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "A")
	backend.AddCommit(a)

	bases, err := a.MergeBase(ctx, a)
	require.NoError(t, err)
	require.Len(t, bases, 1)
	require.Equal(t, a.Hash, bases[0].Hash)
}

func TestMergeBaseUnrelated(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()
	a := NewTestCommit("1111111111111111111111111111111111111100", "A")
	b := NewTestCommit("2222222222222222222222222222222222222200", "B")
	backend.AddCommit(a)
	backend.AddCommit(b)

	bases, err := a.MergeBase(ctx, b)
	require.NoError(t, err)
	require.Len(t, bases, 0)
}
