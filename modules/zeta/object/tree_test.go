package object

import (
	"testing"

	"github.com/antgroup/zeta-ort/modules/plumbing/filemode"
	"github.com/stretchr/testify/require"
)

func TestTreeEntryType(t *testing.T) {
	cases := []struct {
		mode filemode.FileMode
		want ObjectType
	}{
		{filemode.Dir, TreeObject},
		{filemode.Regular, BlobObject},
		{filemode.Executable, BlobObject},
		{filemode.Symlink, BlobObject},
		{filemode.Submodule, CommitObject},
	}
	for _, c := range cases {
		e := &TreeEntry{Mode: c.mode}
		require.Equal(t, c.want, e.Type())
	}
}

func TestSubtreeOrder(t *testing.T) {
	entries := []*TreeEntry{
		{Name: "b", Mode: filemode.Regular},
		{Name: "a", Mode: filemode.Dir},
		{Name: "a", Mode: filemode.Regular},
	}
	order := SubtreeOrder(entries)
	require.True(t, order.Name(2) < order.Name(1), "a\\x00 should sort before a/")
}
