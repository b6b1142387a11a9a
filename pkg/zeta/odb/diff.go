// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package odb

import (
	"context"
	"sort"
	"strings"

	"github.com/antgroup/zeta-ort/modules/diferenco"
	"github.com/antgroup/zeta-ort/modules/plumbing"
	"github.com/antgroup/zeta-ort/modules/plumbing/filemode"
	"github.com/antgroup/zeta-ort/modules/zeta/object"
)

type changeAction int

const (
	changeInsert changeAction = iota
	changeDelete
	changeModify
)

type changeSide struct {
	Path      string
	TreeEntry *object.TreeEntry
}

// treeChange describes one path-level delta between two trees, before
// rename pairing has been applied: an insert (From == nil), a delete
// (To == nil) or a modification in place (both set, same path).
type treeChange struct {
	Action changeAction
	From   *changeSide
	To     *changeSide
}

// diffTrees performs a flat, path-keyed comparison of two trees. It does
// not attempt rename detection; that is layered on top by detectRenames,
// which consumes the insert/delete changes this produces.
func (d *ODB) diffTrees(ctx context.Context, from, to *object.Tree) ([]*treeChange, error) {
	fromEntries, err := d.LsTreeRecurse(ctx, from)
	if err != nil {
		return nil, err
	}
	toEntries, err := d.LsTreeRecurse(ctx, to)
	if err != nil {
		return nil, err
	}
	fromIndex := make(map[string]*TreeEntry, len(fromEntries))
	for _, e := range fromEntries {
		fromIndex[e.Path] = e
	}
	toIndex := make(map[string]*TreeEntry, len(toEntries))
	for _, e := range toEntries {
		toIndex[e.Path] = e
	}
	changes := make([]*treeChange, 0, len(fromEntries)+len(toEntries))
	for _, e := range toEntries {
		old, ok := fromIndex[e.Path]
		if !ok {
			changes = append(changes, &treeChange{Action: changeInsert, To: &changeSide{Path: e.Path, TreeEntry: e.TreeEntry}})
			continue
		}
		if old.Hash == e.Hash && old.Mode == e.Mode {
			continue
		}
		changes = append(changes, &treeChange{
			Action: changeModify,
			From:   &changeSide{Path: old.Path, TreeEntry: old.TreeEntry},
			To:     &changeSide{Path: e.Path, TreeEntry: e.TreeEntry},
		})
	}
	for _, e := range fromEntries {
		if _, ok := toIndex[e.Path]; ok {
			continue
		}
		changes = append(changes, &treeChange{Action: changeDelete, From: &changeSide{Path: e.Path, TreeEntry: e.TreeEntry}})
	}
	return changes, nil
}

const (
	defaultRenameScore = 50
	defaultRenameLimit = 1000
)

// isRenameCandidate reports whether e is eligible to participate in rename
// pairing: renames are only inferred across regular files and symlinks,
// never across directories or submodules.
func isRenameCandidate(e *object.TreeEntry) bool {
	switch e.Mode {
	case filemode.Regular, filemode.Executable, filemode.Symlink:
		return true
	default:
		return false
	}
}

type renamePair struct {
	from  *changeSide
	to    *changeSide
	score int
}

// detectRenames pairs up unmatched deletes and inserts from the same
// change-set into renames, first by exact content match, then - when
// enabled - by line-similarity scoring. Matched pairs are removed from
// the insert/delete slices they were found in.
func (d *ODB) detectRenames(ctx context.Context, changes []*treeChange, detect bool, renameScore, renameLimit int) ([]*treeChange, []renamePair, int, error) {
	if renameScore <= 0 {
		renameScore = defaultRenameScore
	}
	if renameLimit <= 0 {
		renameLimit = defaultRenameLimit
	}
	var deletes, inserts, rest []*treeChange
	for _, c := range changes {
		switch {
		case c.Action == changeDelete && isRenameCandidate(c.From.TreeEntry):
			deletes = append(deletes, c)
		case c.Action == changeInsert && isRenameCandidate(c.To.TreeEntry):
			inserts = append(inserts, c)
		default:
			rest = append(rest, c)
		}
	}

	matchedDeletes := make(map[int]bool)
	matchedInserts := make(map[int]bool)
	var renames []renamePair

	// Exact renames: identical blob hash, unambiguous.
	byHash := make(map[plumbing.Hash][]int)
	for i, c := range inserts {
		byHash[c.To.TreeEntry.Hash] = append(byHash[c.To.TreeEntry.Hash], i)
	}
	for i, c := range deletes {
		cand, ok := byHash[c.From.TreeEntry.Hash]
		if !ok || len(cand) == 0 {
			continue
		}
		j := cand[0]
		if matchedInserts[j] {
			continue
		}
		matchedDeletes[i] = true
		matchedInserts[j] = true
		renames = append(renames, renamePair{from: deletes[i].From, to: inserts[j].To, score: 100})
		byHash[c.From.TreeEntry.Hash] = cand[1:]
	}

	var neededRenameLimit int
	if detect {
		type scored struct {
			di, ii int
			score  int
		}
		var candidates []scored
		tested := 0
		remainingDeletes, remainingInserts := 0, 0
		for i := range deletes {
			if !matchedDeletes[i] {
				remainingDeletes++
			}
		}
		for j := range inserts {
			if !matchedInserts[j] {
				remainingInserts++
			}
		}
		if want := remainingDeletes * remainingInserts; want > renameLimit {
			neededRenameLimit = want
		}
		for i, dc := range deletes {
			if matchedDeletes[i] {
				continue
			}
			for j, ic := range inserts {
				if matchedInserts[j] {
					continue
				}
				if tested >= renameLimit {
					break
				}
				tested++
				score, err := d.blobSimilarity(ctx, dc.From.TreeEntry, ic.To.TreeEntry)
				if err != nil {
					continue
				}
				if score >= renameScore {
					candidates = append(candidates, scored{di: i, ii: j, score: score})
				}
			}
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		for _, c := range candidates {
			if matchedDeletes[c.di] || matchedInserts[c.ii] {
				continue
			}
			matchedDeletes[c.di] = true
			matchedInserts[c.ii] = true
			renames = append(renames, renamePair{from: deletes[c.di].From, to: inserts[c.ii].To, score: c.score})
		}
	}

	for i, c := range deletes {
		if !matchedDeletes[i] {
			rest = append(rest, c)
		}
	}
	for i, c := range inserts {
		if !matchedInserts[i] {
			rest = append(rest, c)
		}
	}
	return rest, renames, neededRenameLimit, nil
}

// blobSimilarity scores how alike two blobs' textual content is: the lines
// of from that survive unchanged in to, as a percentage of the longer
// side's line count. A size mismatch beyond 3x scores 0; an error reading
// either side as text is returned, and detectRenames skips such pairs.
func (d *ODB) blobSimilarity(ctx context.Context, from, to *object.TreeEntry) (int, error) {
	if from.Size == 0 || to.Size == 0 {
		return 0, nil
	}
	small, big := from.Size, to.Size
	if small > big {
		small, big = big, small
	}
	if big > 3*small {
		return 0, nil
	}
	textA, _, err := d.unifiedText(ctx, from.Hash, false)
	if err != nil {
		return 0, err
	}
	textB, _, err := d.unifiedText(ctx, to.Hash, false)
	if err != nil {
		return 0, err
	}
	linesA := strings.Split(textA, "\n")
	linesB := strings.Split(textB, "\n")
	changes := diferenco.HistogramDiff(linesA, linesB)
	var deleted int
	for _, ch := range changes {
		deleted += ch.Del
	}
	common := len(linesA) - deleted
	if common < 0 {
		common = 0
	}
	maxLines := max(len(linesA), len(linesB))
	if maxLines == 0 {
		return 100, nil
	}
	return common * 100 / maxLines, nil
}
