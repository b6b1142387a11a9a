// Copyright 2018 Sourced Technologies, S.L.
// SPDX-License-Identifier: Apache-2.0

// Package filemode defines the set of file modes used by the tree object
// model, mirroring the small enumeration Git itself uses for tree entries.
package filemode

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strconv"
)

// A FileMode represents the kind and permissions of a single tree entry.
// It is encoded the same way Git encodes it: the low bits carry a coarse
// permission pattern and the high bits carry an object-kind tag, so the
// whole value round-trips through its octal string representation.
type FileMode uint32

const (
	Empty      FileMode = 0
	Dir        FileMode = 0040000
	Regular    FileMode = 0100644
	Deprecated FileMode = 0100664
	Executable FileMode = 0100755
	Symlink    FileMode = 0120000
	Submodule  FileMode = 0160000
)

// New parses a mode from its textual, octal representation (e.g. "100644").
func New(s string) (FileMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return Empty, fmt.Errorf("malformed mode %q: %w", s, err)
	}
	return FileMode(n), nil
}

// NewFromOSFileMode translates an fs.FileMode into the reduced set of modes
// a tree entry can hold.
func NewFromOSFileMode(m fs.FileMode) (FileMode, error) {
	if m.IsRegular() {
		if m&0111 != 0 {
			return Executable, nil
		}
		return Regular, nil
	}
	switch {
	case m.IsDir():
		return Dir, nil
	case m&fs.ModeSymlink != 0:
		return Symlink, nil
	default:
		return Empty, fmt.Errorf("no equivalent file mode for %q", m.String())
	}
}

// Bytes returns the mode's octal representation (e.g. "100644", or "40000"
// for Dir), matching the textual form used in tree entries.
func (m FileMode) Bytes() []byte {
	return []byte(m.String())
}

// String implements fmt.Stringer, printing the mode as Git would: the
// exact octal digits, without zero-padding beyond what's significant.
func (m FileMode) String() string {
	return strconv.FormatUint(uint64(m), 8)
}

// IsRegular returns whether the mode represents a regular (non-executable,
// non-special) file.
func (m FileMode) IsRegular() bool {
	return m == Regular || m == Deprecated
}

// IsFile returns true for any mode that addresses blob content: regular
// files, executables, and symlinks.
func (m FileMode) IsFile() bool {
	switch m {
	case Regular, Deprecated, Executable, Symlink:
		return true
	default:
		return false
	}
}

// IsMalformed reports whether m does not correspond to any mode Git
// tree entries are allowed to carry.
func (m FileMode) IsMalformed() bool {
	switch m {
	case Empty, Dir, Regular, Deprecated, Executable, Symlink, Submodule:
		return false
	default:
		return true
	}
}

// ToOSFileMode converts m to the closest fs.FileMode equivalent. Submodules
// have no OS equivalent and are reported as a directory.
func (m FileMode) ToOSFileMode() (fs.FileMode, error) {
	switch m {
	case Dir, Submodule:
		return fs.ModeDir | 0755, nil
	case Symlink:
		return fs.ModeSymlink | 0777, nil
	case Executable:
		return 0755, nil
	case Regular, Deprecated:
		return 0644, nil
	case Empty:
		return 0, nil
	default:
		return 0, fmt.Errorf("malformed mode %o", uint32(m))
	}
}

var (
	_ json.Marshaler   = FileMode(0)
	_ json.Unmarshaler = (*FileMode)(nil)
)

func (m FileMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *FileMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := New(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
