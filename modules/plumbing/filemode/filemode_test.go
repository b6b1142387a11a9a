package filemode

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToOSFileMode(t *testing.T) {
	ms := []FileMode{Regular, Executable, Dir, Symlink, Submodule}
	for _, m := range ms {
		om, err := m.ToOSFileMode()
		require.NoError(t, err)
		require.NotEmpty(t, om.String())
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, m := range []FileMode{Regular, Executable, Dir, Symlink, Submodule} {
		parsed, err := New(m.String())
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	}
}

func TestFileModeJSON(t *testing.T) {
	type J struct {
		A FileMode `json:"a"`
	}
	j := &J{A: Executable}
	var s strings.Builder
	require.NoError(t, json.NewEncoder(&s).Encode(j))

	var j2 J
	require.NoError(t, json.NewDecoder(strings.NewReader(s.String())).Decode(&j2))
	require.Equal(t, j.A, j2.A)
}

func TestIsMalformed(t *testing.T) {
	require.False(t, Regular.IsMalformed())
	require.True(t, FileMode(0777).IsMalformed())
}
