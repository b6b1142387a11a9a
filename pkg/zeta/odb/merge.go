// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package odb

import (
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/antgroup/zeta-ort/modules/diferenco"
	"github.com/antgroup/zeta-ort/modules/plumbing"
	"github.com/antgroup/zeta-ort/modules/plumbing/filemode"
	"github.com/antgroup/zeta-ort/modules/strengthen"
	"github.com/antgroup/zeta-ort/modules/zeta/backend"
	"github.com/antgroup/zeta-ort/modules/zeta/object"
	"github.com/antgroup/zeta-ort/pkg/tr"
)

const (
	mergeLimit = 50 * 1024 * 1024 // 50M
)

// ConflictEntry represents a conflict entry which is one of the sides of a conflict.
type ConflictEntry struct {
	// Path is the path of the conflicting file.
	Path string `json:"path"`
	// Mode is the mode of the conflicting file.
	Mode filemode.FileMode `json:"mode"`
	Hash plumbing.Hash     `json:"oid"`
}

const (
	INFO_AUTO_MERGING = iota
	CONFLICT_CONTENTS
	CONFLICT_BINARY
	CONFLICT_FILE_DIRECTORY
	CONFLICT_DISTINCT_MODES
	CONFLICT_MODIFY_DELETE
	// Regular rename
	CONFLICT_RENAME_RENAME
	CONFLICT_RENAME_COLLIDES
	CONFLICT_RENAME_DELETE
	CONFLICT_DIR_RENAME_SUGGESTED
	INFO_DIR_RENAME_APPLIED
	// Special directory rename cases
	INFO_DIR_RENAME_SKIPPED_DUE_TO_RERENAME
	CONFLICT_DIR_RENAME_FILE_IN_WAY
	CONFLICT_DIR_RENAME_COLLISION
	CONFLICT_DIR_RENAME_SPLIT
)

// var (
// 	mergeDescription = map[int]string{
// 		/*** "Simple" conflicts and informational messages ***/
// 		INFO_AUTO_MERGING:       "Auto-merging",
// 		CONFLICT_CONTENTS:       "CONFLICT (contents)",
// 		CONFLICT_BINARY:         "CONFLICT (binary)",
// 		CONFLICT_FILE_DIRECTORY: "CONFLICT (file/directory)",
// 		CONFLICT_DISTINCT_MODES: "CONFLICT (distinct modes)",
// 		CONFLICT_MODIFY_DELETE:  "CONFLICT (modify/delete)",
// 		/*** Regular rename ***/
// 		CONFLICT_RENAME_RENAME:   "CONFLICT (rename/rename)",
// 		CONFLICT_RENAME_COLLIDES: "CONFLICT (rename involved in collision)",
// 		CONFLICT_RENAME_DELETE:   "CONFLICT (rename/delete)",

// 		/*** Basic directory rename ***/
// 		CONFLICT_DIR_RENAME_SUGGESTED: "CONFLICT (directory rename suggested)",
// 		INFO_DIR_RENAME_APPLIED:       "Path updated due to directory rename",

// 		/*** Special directory rename cases ***/
// 		INFO_DIR_RENAME_SKIPPED_DUE_TO_RERENAME: "Directory rename skipped since directory was renamed on both sides",
// 		CONFLICT_DIR_RENAME_FILE_IN_WAY:         "CONFLICT (file in way of directory rename)",
// 		CONFLICT_DIR_RENAME_COLLISION:           "CONFLICT(directory rename collision)",
// 		CONFLICT_DIR_RENAME_SPLIT:               "CONFLICT(directory rename unclear split)",
// 	}
// )

// Conflict represents a merge conflict for a single file.
type Conflict struct {
	// Ancestor is the conflict entry of the merge-base.
	Ancestor ConflictEntry `json:"ancestor"`
	// Our is the conflict entry of ours.
	Our ConflictEntry `json:"our"`
	// Their is the conflict entry of theirs.
	Their ConflictEntry `json:"their"`
	// Types: conflict types
	Types int `json:"types"`
}

type ChangeEntry struct {
	Path     string
	Ancestor *object.TreeEntry
	Our      *object.TreeEntry
	Their    *object.TreeEntry
}

func (e *ChangeEntry) replace(newName string) *ChangeEntry {
	newEntry := &ChangeEntry{Path: newName, Ancestor: e.Ancestor, Our: e.Our, Their: e.Their}
	baseName := path.Base(newName)
	if newEntry.Our != nil {
		newEntry.Our.Name = baseName
	}
	if newEntry.Their != nil {
		newEntry.Their.Name = baseName
	}
	return newEntry
}

func (e *ChangeEntry) modifiedEntry() *TreeEntry {
	if e.Our != nil {
		return &TreeEntry{Path: e.Path, TreeEntry: e.Our}
	}
	return &TreeEntry{Path: e.Path, TreeEntry: e.Their}
}

func (e *ChangeEntry) conflictMode() (filemode.FileMode, bool) {
	if e.Ancestor.Mode == e.Our.Mode {
		return e.Their.Mode, false
	}
	if e.Ancestor.Mode == e.Their.Mode {
		return e.Our.Mode, false
	}
	return e.Our.Mode, e.Our.Mode != e.Their.Mode
}

func (e *ChangeEntry) hasConflict() bool {
	// !(their modified|our modified|our equal their: delete both or insert both)
	return !(e.Ancestor.Equal(e.Our) || e.Ancestor.Equal(e.Their) || e.Our.Equal(e.Their))
}

func (e *ChangeEntry) makeConflict(side int) *Conflict {
	c := &Conflict{Types: side}
	if e.Ancestor != nil {
		c.Ancestor.Hash = e.Ancestor.Hash
		c.Ancestor.Mode = e.Ancestor.Mode
		c.Ancestor.Path = e.Path
	}
	if e.Our != nil {
		c.Our.Hash = e.Our.Hash
		c.Our.Mode = e.Our.Mode
		c.Our.Path = e.Path
	}
	if e.Their != nil {
		c.Their.Hash = e.Their.Hash
		c.Their.Mode = e.Their.Mode
		c.Their.Path = e.Path
	}
	return c
}

type RenameEntry struct {
	Ancestor *TreeEntry
	Our      *TreeEntry
	Their    *TreeEntry
}

func (e *RenameEntry) conflict() bool {
	// !(their rename|our rename|both rename equal)
	return !(e.Our == nil || e.Their == nil || e.Our.Equal(e.Their))
}

func (e *RenameEntry) makeConflict() *Conflict {
	c := &Conflict{
		Ancestor: ConflictEntry{
			Path: e.Ancestor.Path,
			Mode: e.Ancestor.Mode,
			Hash: e.Ancestor.Hash,
		},
		Types: CONFLICT_RENAME_RENAME,
	}
	if e.Our != nil {
		c.Our = ConflictEntry{
			Path: e.Our.Path,
			Mode: e.Our.Mode,
			Hash: e.Our.Hash,
		}
	}
	if e.Their != nil {
		c.Their = ConflictEntry{
			Path: e.Their.Path,
			Mode: e.Their.Mode,
			Hash: e.Their.Hash,
		}
	}
	return c
}

type differences struct {
	entries map[string]*ChangeEntry
	// rename
	renames map[string]*RenameEntry
	ours    map[string]bool
	theirs  map[string]bool
	// neededRenameLimit records the rename_limit that would have been
	// required to score every candidate pair, when the configured limit
	// cut detection short. Zero means the limit was never hit.
	neededRenameLimit int
	// messages carries informational/conflict text produced while applying
	// directory-rename inference, surfaced to MergeResult.Messages.
	messages []string
}

// dirRenameInfo is the majority-vote outcome for one old directory: the
// directory that the bulk of its files were renamed into, or ambiguous if
// no destination directory had a strict majority of the votes.
type dirRenameInfo struct {
	newDir    string
	ambiguous bool
}

// renamedDirPortion extracts the renamed-directory prefixes of a single
// file rename by dropping the common trailing path components shared by
// oldPath and newPath. A plain rename within the same directory, or one
// that also changes the basename, contributes nothing: the directory
// portion can only be inferred when at least the basename lines up.
func renamedDirPortion(oldPath, newPath string) (oldDir, newDir string, ok bool) {
	oldParts := strings.Split(oldPath, "/")
	newParts := strings.Split(newPath, "/")
	oi, ni := len(oldParts), len(newParts)
	for oi > 1 && ni > 1 && oldParts[oi-1] == newParts[ni-1] {
		oi--
		ni--
	}
	if oi == len(oldParts) {
		// basename didn't match, or one path has no directory part.
		return "", "", false
	}
	oldDir = strings.Join(oldParts[:oi], "/")
	newDir = strings.Join(newParts[:ni], "/")
	if oldDir == "" || newDir == "" || oldDir == newDir {
		// root-to-subdirectory renames are excluded.
		return "", "", false
	}
	return oldDir, newDir, true
}

// computeDirRenames aggregates individual file renames per source
// directory and picks, for each, the destination directory that a
// strict majority of its renamed files agreed on.
func computeDirRenames(renames []renamePair) map[string]*dirRenameInfo {
	votes := make(map[string]map[string]int)
	for _, rp := range renames {
		oldDir, newDir, ok := renamedDirPortion(rp.from.Path, rp.to.Path)
		if !ok {
			continue
		}
		if votes[oldDir] == nil {
			votes[oldDir] = make(map[string]int)
		}
		votes[oldDir][newDir]++
	}
	result := make(map[string]*dirRenameInfo, len(votes))
	for oldDir, cands := range votes {
		total, best, bestCount := 0, "", 0
		for d, c := range cands {
			total += c
			if c > bestCount {
				best, bestCount = d, c
			}
		}
		result[oldDir] = &dirRenameInfo{newDir: best, ambiguous: bestCount*2 <= total}
	}
	return result
}

// dirRenameFor reports the path an inferred directory rename would move p
// to, consulting the nearest enclosing renamed ancestor directory.
func dirRenameFor(p string, dirRenames map[string]*dirRenameInfo) (string, bool) {
	dir := path.Dir(p)
	for {
		if info, ok := dirRenames[dir]; ok {
			if info.ambiguous {
				return "", false
			}
			rel := strings.TrimPrefix(p, dir+"/")
			return info.newDir + "/" + rel, true
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (d *differences) overrideOurInsert(to *changeSide) {
	d.ours[to.Path] = true
	d.entries[to.Path] = &ChangeEntry{Path: to.Path, Our: to.TreeEntry}
}

func (d *differences) overrideOurDelete(from *changeSide) {
	d.entries[from.Path] = &ChangeEntry{Path: from.Path, Ancestor: from.TreeEntry, Their: from.TreeEntry}
}

func (d *differences) overrideOurModify(from, to *changeSide) {
	d.ours[to.Path] = true
	d.entries[from.Path] = &ChangeEntry{Path: from.Path, Ancestor: from.TreeEntry, Our: to.TreeEntry, Their: from.TreeEntry}
}

func (d *differences) overrideOurRename(from, to *changeSide) {
	d.ours[to.Path] = true
	d.renames[from.Path] = &RenameEntry{
		Ancestor: &TreeEntry{Path: from.Path, TreeEntry: from.TreeEntry},
		Our:      &TreeEntry{Path: to.Path, TreeEntry: to.TreeEntry},
	}
	d.entries[from.Path] = &ChangeEntry{Path: from.Path, Ancestor: from.TreeEntry, Their: from.TreeEntry}
	d.entries[to.Path] = &ChangeEntry{Path: to.Path, Our: to.TreeEntry}
}

func (d *differences) overrideTheirInsert(to *changeSide) {
	d.theirs[to.Path] = true
	if e, ok := d.entries[to.Path]; ok {
		e.Their = to.TreeEntry
		return
	}
	d.entries[to.Path] = &ChangeEntry{Path: to.Path, Their: to.TreeEntry}
}

func (d *differences) overrideTheirDelete(from *changeSide) {
	if e, ok := d.entries[from.Path]; ok {
		e.Their = nil
		return
	}
	d.entries[from.Path] = &ChangeEntry{Path: from.Path, Ancestor: from.TreeEntry, Our: from.TreeEntry}
}

func (d *differences) overrideTheirModify(from, to *changeSide) {
	d.theirs[to.Path] = true
	if e, ok := d.entries[from.Path]; ok {
		e.Their = to.TreeEntry
		return
	}
	d.entries[from.Path] = &ChangeEntry{Path: from.Path, Ancestor: from.TreeEntry, Our: from.TreeEntry, Their: to.TreeEntry}
}

func (d *differences) overrideTheirRename(from, to *changeSide) {
	d.theirs[to.Path] = true
	if e, ok := d.renames[from.Path]; ok {
		e.Their = &TreeEntry{Path: to.Path, TreeEntry: to.TreeEntry}
		if e.Our != nil && e.Our.Path != to.Path {
			// rename/rename(1to2): the same ancestor path was renamed to
			// two different destinations. Give each destination a 3-way
			// content merge (ancestor content, this side's content, the
			// other side's content at its own destination) instead of
			// two isolated one-sided inserts, mirroring how the
			// rename/rename(2to1) collision already gets one below.
			ancestor := &TreeEntry{Path: from.Path, TreeEntry: from.TreeEntry}
			// Each destination's entry keeps its own version as "Our" (so
			// Name/Mode come from the right side) and cross-references
			// the other destination's version as "Their" for the 3-way
			// content diff.
			d.entries[e.Our.Path] = &ChangeEntry{Path: e.Our.Path, Ancestor: ancestor, Our: e.Our, Their: e.Their}
			d.entries[e.Their.Path] = &ChangeEntry{Path: e.Their.Path, Ancestor: ancestor, Our: e.Their, Their: e.Our}
			return
		}
	} else {
		d.renames[from.Path] = &RenameEntry{
			Ancestor: &TreeEntry{Path: from.Path, TreeEntry: from.TreeEntry},
			Their:    &TreeEntry{Path: to.Path, TreeEntry: to.TreeEntry},
		}
	}
	// rename style: delete old
	if e, ok := d.entries[from.Path]; ok {
		e.Their = nil
	} else {
		d.entries[from.Path] = &ChangeEntry{Path: from.Path, Ancestor: from.TreeEntry, Our: from.TreeEntry}
	}
	// insert new
	if e, ok := d.entries[to.Path]; ok {
		e.Their = to.TreeEntry
	} else {
		d.entries[to.Path] = &ChangeEntry{Path: to.Path, Their: to.TreeEntry}
	}
}

func (d *differences) nameConflicts() map[string]string {
	names := make([]string, 0, len(d.entries))
	for p := range d.entries {
		names = append(names, p)
	}
	conflicts := make(map[string]string)
	sort.Strings(names)
	for i := 0; i < len(names); i++ {
		prefix := names[i] + "/"
		for j := i + 1; j < len(names); j++ {
			if strings.HasPrefix(names[j], prefix) {
				conflicts[names[i]] = names[j]
			}
		}
	}
	return conflicts
}

func (d *ODB) mergeDifferences(ctx context.Context, o, a, b *object.Tree, opts *MergeOptions) (*differences, error) {
	oursRaw, err := d.diffTrees(ctx, o, a)
	if err != nil {
		return nil, err
	}
	theirsRaw, err := d.diffTrees(ctx, o, b)
	if err != nil {
		return nil, err
	}
	ours, ourRenames, ourNeeded, err := d.detectRenames(ctx, oursRaw, opts.DetectRenames, opts.RenameScore, opts.RenameLimit)
	if err != nil {
		return nil, err
	}
	theirs, theirRenames, theirNeeded, err := d.detectRenames(ctx, theirsRaw, opts.DetectRenames, opts.RenameScore, opts.RenameLimit)
	if err != nil {
		return nil, err
	}
	ds := &differences{
		entries:           make(map[string]*ChangeEntry),
		renames:           make(map[string]*RenameEntry),
		ours:              make(map[string]bool),
		theirs:            make(map[string]bool),
		neededRenameLimit: max(ourNeeded, theirNeeded),
	}

	var ourDirRenames, theirDirRenames map[string]*dirRenameInfo
	if opts.DetectDirRenames {
		ourDirRenames = computeDirRenames(ourRenames)
		theirDirRenames = computeDirRenames(theirRenames)
		for dir := range ourDirRenames {
			if _, ok := theirDirRenames[dir]; ok {
				delete(ourDirRenames, dir)
				delete(theirDirRenames, dir)
				ds.messages = append(ds.messages, tr.Sprintf("directory rename skipped for %s: renamed on both sides", dir))
			}
		}
	}
	destSeen := make(map[string]bool)

	for _, c := range ours {
		switch c.Action {
		case changeInsert:
			to := c.To
			if newPath, ok := dirRenameFor(to.Path, theirDirRenames); ok && !destSeen[newPath] {
				destSeen[newPath] = true
				ds.messages = append(ds.messages, tr.Sprintf("path updated due to directory rename: %s -> %s", to.Path, newPath))
				to = &changeSide{Path: newPath, TreeEntry: to.TreeEntry}
			}
			ds.overrideOurInsert(to)
		case changeDelete:
			ds.overrideOurDelete(c.From)
		case changeModify:
			ds.overrideOurModify(c.From, c.To)
		}
	}
	for _, rp := range ourRenames {
		ds.overrideOurRename(rp.from, rp.to)
	}
	for _, c := range theirs {
		switch c.Action {
		case changeInsert:
			to := c.To
			if newPath, ok := dirRenameFor(to.Path, ourDirRenames); ok && !destSeen[newPath] {
				destSeen[newPath] = true
				ds.messages = append(ds.messages, tr.Sprintf("path updated due to directory rename: %s -> %s", to.Path, newPath))
				to = &changeSide{Path: newPath, TreeEntry: to.TreeEntry}
			}
			ds.overrideTheirInsert(to)
		case changeDelete:
			ds.overrideTheirDelete(c.From)
		case changeModify:
			ds.overrideTheirModify(c.From, c.To)
		}
	}
	for _, rp := range theirRenames {
		ds.overrideTheirRename(rp.from, rp.to)
	}
	return ds, nil
}

const (
	MERGE_VARIANT_NORMAL = 0
	MERGE_VARIANT_OURS   = 1
	MERGE_VARIANT_THEIRS = 2
)

type MergeOptions struct {
	Branch1       string
	Branch2       string
	DetectRenames bool
	// DetectDirRenames enables directory-rename inference: when one side
	// renames most of a directory's tracked files to a new location, new
	// files the other side adds under the old directory are relocated
	// there too. Requires DetectRenames.
	DetectDirRenames bool
	RenameLimit      int
	RenameScore      int
	Variant          int
	Textconv         bool
	MergeDriver      MergeDriver
	TextGetter       TextGetter
	// SubtreeShift, when non-empty, is a path prefix within the "their"
	// side (and its merge base) that is shifted to the root before the
	// merge runs, so that a subtree elsewhere in their history can be
	// merged as if it were their whole tree.
	SubtreeShift string
	// CallDepth is the recursion depth of the virtual-ancestor merge
	// (0 for the outermost, real merge). At depth > 0 the tree being
	// produced is only a synthetic merge base for a further merge, so
	// modify/delete conflicts are resolved by keeping the base version
	// instead of locking in either side prematurely.
	CallDepth int
	// IsAncestor and FindMergesContaining are the submodule commit-
	// reachability queries this engine treats as external collaborators:
	// it never walks commit history itself, it only asks. Gitlink
	// entries that diverge on both sides fall back to a content
	// conflict when either is nil.
	IsAncestor           AncestorChecker
	FindMergesContaining MergesContainingFinder
}

// AncestorChecker reports whether ancestor is reachable by following commit
// parents starting from descendant.
type AncestorChecker func(ctx context.Context, ancestor, descendant plumbing.Hash) (bool, error)

// MergesContainingFinder returns merge commits from which both a and b are
// reachable.
type MergesContainingFinder func(ctx context.Context, a, b plumbing.Hash) ([]plumbing.Hash, error)

type MergeResult struct {
	NewTree   plumbing.Hash `json:"new-tree"`
	Conflicts []*Conflict   `json:"conflicts,omitempty"`
	Messages  []string      `json:"messages,omitempty"`
	// NeededRenameLimit is the rename_limit that would have been required
	// to score every rename candidate pair; zero unless RenameLimit cut
	// detection short.
	NeededRenameLimit int `json:"needed-rename-limit,omitempty"`
}

func (mr *MergeResult) Error() string {
	return "conflicts"
}

func (d *ODB) mergeEntry(ctx context.Context, ch *ChangeEntry, opts *MergeOptions, result *MergeResult) (*TreeEntry, error) {
	// Both sides add
	if ch.Ancestor == nil {
		switch {
		case ch.Our.Hash == ch.Their.Hash:
			// Only filemode changes
			result.Messages = append(result.Messages, tr.Sprintf("CONFLICT (distinct types): %s had different types on each side; kept the mode from %s.", ch.Path, opts.Branch1))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_DISTINCT_MODES))
			return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
		case ch.Our.Size > mergeLimit || ch.Their.Size > mergeLimit:
			result.Messages = append(result.Messages, tr.Sprintf("warning: Cannot merge binary files: %s (%s vs. %s)", ch.Path, opts.Branch1, opts.Branch2))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_BINARY))
			return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
		default:
		}
		mr, err := d.mergeText(ctx, &mergeOptions{
			O:        backend.BLANK_BLOB_HASH, // empty blob
			A:        ch.Our.Hash,
			B:        ch.Their.Hash,
			LabelO:   "",
			LableA:   opts.Branch1,
			LabelB:   opts.Branch2,
			Textconv: opts.Textconv,
			M:        opts.MergeDriver,
			G:        opts.TextGetter,
		})
		if errors.Is(err, diferenco.ErrBinaryData) {
			result.Messages = append(result.Messages, tr.Sprintf("warning: Cannot merge binary files: %s (%s vs. %s)", ch.Path, opts.Branch1, opts.Branch2))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_BINARY))
			return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
		}
		if err != nil {
			return nil, err
		}
		if mr.conflict {
			// Note: If there is no automatic encoding conversion, conflicts will definitely occur when merging here.
			result.Messages = append(result.Messages, tr.Sprintf("CONFLICT (%s): Merge conflict in %s", tr.W("add/add"), ch.Path))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_CONTENTS))
		}
		return &TreeEntry{
			Path: ch.Path,
			TreeEntry: &object.TreeEntry{
				Name: ch.Our.Name,
				Size: mr.size,
				Mode: ch.Our.Mode,
				Hash: mr.oid,
			}}, nil
	}
	// Modifications by both parties:
	if ch.Our != nil && ch.Their != nil {
		if ch.Ancestor.Mode == filemode.Submodule && ch.Our.Mode == filemode.Submodule && ch.Their.Mode == filemode.Submodule {
			return d.mergeSubmodule(ctx, ch, opts, result)
		}
		switch {
		case ch.Our.Hash == ch.Their.Hash:
			// Only filemode changes
			result.Messages = append(result.Messages, tr.Sprintf("CONFLICT (distinct types): %s had different types on each side; kept the mode from %s.", ch.Path, opts.Branch1))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_DISTINCT_MODES))
			return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
		case ch.Our.Size > mergeLimit || ch.Their.Size > mergeLimit:
			result.Messages = append(result.Messages, tr.Sprintf("warning: Cannot merge binary files: %s (%s vs. %s)", ch.Path, opts.Branch1, opts.Branch2))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_BINARY))
			return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
		default:
		}
		mr, err := d.mergeText(ctx,
			&mergeOptions{
				O:        ch.Ancestor.Hash,
				A:        ch.Our.Hash,
				B:        ch.Their.Hash,
				LabelO:   ch.Path,
				LableA:   opts.Branch1,
				LabelB:   opts.Branch2,
				Textconv: opts.Textconv,
				M:        opts.MergeDriver,
				G:        opts.TextGetter,
			})
		if errors.Is(err, diferenco.ErrBinaryData) {
			result.Messages = append(result.Messages, tr.Sprintf("warning: Cannot merge binary files: %s (%s vs. %s)", ch.Path, opts.Branch1, opts.Branch2))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_BINARY))
			return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
		}
		if err != nil {
			return nil, err
		}
		newMode, modeConflict := ch.conflictMode()
		switch {
		case mr.conflict:
			result.Messages = append(result.Messages, tr.Sprintf("CONFLICT (%s): Merge conflict in %s", tr.W("content"), ch.Path))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_CONTENTS))
		case modeConflict:
			result.Messages = append(result.Messages, tr.Sprintf("CONFLICT (distinct types): %s had different types on each side; kept the mode from %s.", ch.Path, opts.Branch1))
			result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_DISTINCT_MODES))
		default:
		}
		return &TreeEntry{
			Path: ch.Path,
			TreeEntry: &object.TreeEntry{
				Name: ch.Our.Name,
				Size: mr.size,
				Mode: newMode,
				Hash: mr.oid,
			}}, nil
	}
	// One side deletes, the other side modifies:
	// our modified, theirs delete
	// their modified, our delete
	if opts.CallDepth > 0 {
		// This tree is only a synthetic merge base for a further,
		// outer merge: prefer the ancestor version rather than
		// surfacing a conflict, so the outer merge isn't forced to
		// inherit a premature pick between the two sides.
		return &TreeEntry{Path: ch.Path, TreeEntry: ch.Ancestor}, nil
	}
	var message string
	if ch.Our == nil {
		message = tr.Sprintf("CONFLICT (modify/delete): %s deleted in %s and modified in %s.", ch.Path, opts.Branch1, opts.Branch2)
	} else {
		message = tr.Sprintf("CONFLICT (modify/delete): %s deleted in %s and modified in %s.", ch.Path, opts.Branch2, opts.Branch1)
	}
	result.Messages = append(result.Messages, message)
	result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_MODIFY_DELETE))
	return ch.modifiedEntry(), nil
}

// mergeSubmodule resolves a gitlink entry changed on both sides: the engine
// never synthesizes a new submodule commit, it only fast-forwards when one
// recorded commit is an ancestor of the other, or reports the merges that
// contain both when neither is.
func (d *ODB) mergeSubmodule(ctx context.Context, ch *ChangeEntry, opts *MergeOptions, result *MergeResult) (*TreeEntry, error) {
	o, a, b := ch.Ancestor.Hash, ch.Our.Hash, ch.Their.Hash
	switch {
	case a == b:
		return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
	case o == a:
		return &TreeEntry{Path: ch.Path, TreeEntry: ch.Their}, nil
	case o == b:
		return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
	}
	if opts.IsAncestor == nil || opts.FindMergesContaining == nil {
		result.Messages = append(result.Messages,
			tr.Sprintf("CONFLICT (submodule): %s diverged between %s and %s; no commit-reachability resolver configured.", ch.Path, opts.Branch1, opts.Branch2))
		result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_CONTENTS))
		return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
	}
	theirsDescendsOurs, err := opts.IsAncestor(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if theirsDescendsOurs {
		return &TreeEntry{Path: ch.Path, TreeEntry: ch.Their}, nil
	}
	oursDescendsTheirs, err := opts.IsAncestor(ctx, b, a)
	if err != nil {
		return nil, err
	}
	if oursDescendsTheirs {
		return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
	}
	// Known source ambiguity, carried forward deliberately: resolving
	// against our side here rather than the base is admitted upstream as
	// "WRONG for the recursive case", but this mirrors that behavior
	// rather than silently fixing it.
	merges, err := opts.FindMergesContaining(ctx, a, b)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(merges))
	for _, m := range merges {
		names = append(names, m.String())
	}
	result.Messages = append(result.Messages,
		tr.Sprintf("CONFLICT (submodule): %s diverged between %s and %s; candidate merge commits: %s.", ch.Path, opts.Branch1, opts.Branch2, strings.Join(names, ", ")))
	result.Conflicts = append(result.Conflicts, ch.makeConflict(CONFLICT_CONTENTS))
	return &TreeEntry{Path: ch.Path, TreeEntry: ch.Our}, nil
}

func flatBranchName(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c == '/' || (c == '\\' && runtime.GOOS == "windows") {
			_ = b.WriteByte('_')
			continue
		}
		_, _ = b.WriteRune(c)
	}
	return b.String()
}

func (d *ODB) unifiedText(ctx context.Context, oid plumbing.Hash, textconv bool) (string, string, error) {
	br, err := d.Blob(ctx, oid)
	if err != nil {
		return "", "", err
	}
	defer br.Close()
	return diferenco.ReadUnifiedText(br.Contents, br.Size, textconv)
}

// shiftTree re-roots tree at opts.SubtreeShift, so that "their" side (and
// the base it is compared against) are merged as if that subtree were the
// whole tree. A no-op when SubtreeShift is empty.
func shiftTree(ctx context.Context, t *object.Tree, shift string) (*object.Tree, error) {
	if shift == "" {
		return t, nil
	}
	shifted, err := t.Tree(ctx, shift)
	if err != nil {
		return nil, fmt.Errorf("subtree-shift: %q not found: %w", shift, err)
	}
	return shifted, nil
}

// MergeTree: three way merge tree
func (d *ODB) MergeTree(ctx context.Context, o, a, b *object.Tree, opts *MergeOptions) (*MergeResult, error) {
	if opts.Branch1 == "" {
		opts.Branch1 = "Branch1"
	}
	if opts.Branch2 == "" {
		opts.Branch2 = "Branch2"
	}
	if opts.MergeDriver == nil {
		opts.MergeDriver = diferenco.DefaultMerge // fallback
	}
	if opts.TextGetter == nil {
		opts.TextGetter = d.unifiedText
	}
	if opts.SubtreeShift != "" {
		var err error
		if o, err = shiftTree(ctx, o, opts.SubtreeShift); err != nil {
			return nil, err
		}
		if b, err = shiftTree(ctx, b, opts.SubtreeShift); err != nil {
			return nil, err
		}
	}
	diffs, err := d.mergeDifferences(ctx, o, a, b, opts)
	if err != nil {
		return nil, err
	}
	entries, err := d.LsTreeRecurse(ctx, o)
	if err != nil {
		return nil, err
	}
	result := &MergeResult{NeededRenameLimit: diffs.neededRenameLimit}
	result.Messages = append(result.Messages, diffs.messages...)
	// check rename conflicts
	for _, e := range diffs.renames {
		if !e.conflict() {
			continue
		}
		result.Messages = append(result.Messages,
			tr.Sprintf("CONFLICT (rename/rename): %s renamed to %s in %s and to %s in %s.", e.Ancestor.Path, e.Our.Path, opts.Branch1, e.Their.Path, opts.Branch2))
		result.Conflicts = append(result.Conflicts, e.makeConflict())
	}
	// check file/directory conflict
	nameConflicts := diffs.nameConflicts()
	for name := range nameConflicts {
		e, ok := diffs.entries[name]
		if !ok {
			continue
		}
		branchName := opts.Branch1
		if diffs.theirs[name] {
			branchName = opts.Branch2
		}
		delete(diffs.entries, name)
		base := strengthen.StrCat(e.Path, "~", flatBranchName(branchName))
		newName := base
		for i := 0; ; i++ {
			if _, taken := diffs.entries[newName]; !taken {
				break
			}
			newName = strengthen.StrCat(base, "_", strconv.Itoa(i))
		}
		newEntry := e.replace(newName)
		result.Messages = append(result.Messages,
			tr.Sprintf("CONFLICT (file/directory): directory in the way of %s from %s; moving it to %s instead.", name, branchName, newName))
		result.Conflicts = append(result.Conflicts, newEntry.makeConflict(CONFLICT_FILE_DIRECTORY))
		diffs.entries[newName] = newEntry
	}
	newEntries := make([]*TreeEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := diffs.entries[e.Path]; !ok {
			newEntries = append(newEntries, e)
			continue
		}
	}

	for _, e := range diffs.entries {
		// ours unmodified
		if e.Ancestor.Equal(e.Our) {
			if e.Their != nil {
				newEntries = append(newEntries, &TreeEntry{Path: e.Path, TreeEntry: e.Their})
			}
			continue
		}
		// theirs unmodified
		if e.Ancestor.Equal(e.Their) {
			if e.Our != nil {
				newEntries = append(newEntries, &TreeEntry{Path: e.Path, TreeEntry: e.Our})
			}
			continue
		}
		// Add same content/delete same files
		if e.Our.Equal(e.Their) {
			if e.Our != nil {
				newEntries = append(newEntries, &TreeEntry{Path: e.Path, TreeEntry: e.Our})
			}
			continue
		}
		result.Messages = append(result.Messages, tr.Sprintf("Auto-merging %s", e.Path))
		mergedEntry, err := d.mergeEntry(ctx, e, opts, result)
		if err != nil {
			return nil, err
		}
		newEntries = append(newEntries, mergedEntry)
	}
	m := &treeMaker{
		ODB: d,
	}

	if result.NewTree, err = m.makeTrees(newEntries); err != nil {
		return nil, err
	}
	return result, nil
}
