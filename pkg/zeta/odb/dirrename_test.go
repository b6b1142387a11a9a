package odb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenamedDirPortion(t *testing.T) {
	cases := []struct {
		name           string
		old, new       string
		oldDir, newDir string
		ok             bool
	}{
		{name: "simple directory rename", old: "d/a", new: "e/a", oldDir: "d", newDir: "e", ok: true},
		{name: "nested directory rename", old: "d/sub/a", new: "e/sub/a", oldDir: "d", newDir: "e", ok: true},
		{name: "basename changed too", old: "d/a", new: "e/b", ok: false},
		{name: "flat rename, no directory", old: "a", new: "b", ok: false},
		{name: "root to subdirectory excluded", old: "a", new: "sub/a", ok: false},
		{name: "same directory rename", old: "d/a", new: "d/b-renamed", ok: false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			oldDir, newDir, ok := renamedDirPortion(c.old, c.new)
			require.Equal(t, c.ok, ok)
			if ok {
				require.Equal(t, c.oldDir, oldDir)
				require.Equal(t, c.newDir, newDir)
			}
		})
	}
}

func TestComputeDirRenamesMajority(t *testing.T) {
	renames := []renamePair{
		{from: &changeSide{Path: "old/a"}, to: &changeSide{Path: "new/a"}},
		{from: &changeSide{Path: "old/b"}, to: &changeSide{Path: "new/b"}},
		{from: &changeSide{Path: "old/c"}, to: &changeSide{Path: "new/c"}},
		{from: &changeSide{Path: "old/d"}, to: &changeSide{Path: "elsewhere/d"}},
	}
	dirs := computeDirRenames(renames)
	info, ok := dirs["old"]
	require.True(t, ok)
	require.False(t, info.ambiguous)
	require.Equal(t, "new", info.newDir)
}

func TestComputeDirRenamesTieIsAmbiguous(t *testing.T) {
	renames := []renamePair{
		{from: &changeSide{Path: "old/a"}, to: &changeSide{Path: "left/a"}},
		{from: &changeSide{Path: "old/b"}, to: &changeSide{Path: "right/b"}},
	}
	dirs := computeDirRenames(renames)
	info, ok := dirs["old"]
	require.True(t, ok)
	require.True(t, info.ambiguous)
}

func TestDirRenameForNearestAncestor(t *testing.T) {
	dirs := map[string]*dirRenameInfo{
		"old":     {newDir: "new"},
		"old/sub": {newDir: "sub-new"},
	}
	newPath, ok := dirRenameFor("old/sub/file.txt", dirs)
	require.True(t, ok)
	require.Equal(t, "sub-new/file.txt", newPath)

	newPath, ok = dirRenameFor("old/file.txt", dirs)
	require.True(t, ok)
	require.Equal(t, "new/file.txt", newPath)

	_, ok = dirRenameFor("unrelated/file.txt", dirs)
	require.False(t, ok)
}

func TestDirRenameForAmbiguousSkipped(t *testing.T) {
	dirs := map[string]*dirRenameInfo{
		"old": {ambiguous: true},
	}
	_, ok := dirRenameFor("old/file.txt", dirs)
	require.False(t, ok)
}
