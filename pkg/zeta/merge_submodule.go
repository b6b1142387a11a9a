// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package zeta

import (
	"context"
	"io"

	"github.com/antgroup/zeta-ort/modules/plumbing"
	"github.com/antgroup/zeta-ort/modules/zeta/object"
)

// isAncestorCommit answers the engine's is_ancestor query by reusing the
// same merge-base walk MergeBase uses for tree recursion: ancestor is
// reachable from descendant exactly when it is itself their sole merge
// base.
func (r *Repository) isAncestorCommit(ctx context.Context, ancestor, descendant plumbing.Hash) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	a, err := r.odb.Commit(ctx, ancestor)
	if err != nil {
		return false, err
	}
	b, err := r.odb.Commit(ctx, descendant)
	if err != nil {
		return false, err
	}
	bases, err := a.MergeBase(ctx, b)
	if err != nil {
		return false, err
	}
	return len(bases) == 1 && bases[0].Hash == ancestor, nil
}

// findMergesContaining answers the engine's find_all_merges_containing
// query: it walks every ref's history once (object.NewCommitAllIter) and
// reports merge commits (more than one parent) that are descendants of
// both a and b.
func (r *Repository) findMergesContaining(ctx context.Context, a, b plumbing.Hash) ([]plumbing.Hash, error) {
	seen := make(map[plumbing.Hash]bool)
	iter, err := object.NewCommitAllIter(ctx, r.RDB(), r.odb,
		func(c *object.Commit) object.CommitIter {
			return object.NewCommitPreorderIter(c, seen, nil)
		})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var merges []plumbing.Hash
	for {
		c, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(c.Parents) < 2 {
			continue
		}
		containsA, err := r.isAncestorCommit(ctx, a, c.Hash)
		if err != nil {
			return nil, err
		}
		if !containsA {
			continue
		}
		containsB, err := r.isAncestorCommit(ctx, b, c.Hash)
		if err != nil {
			return nil, err
		}
		if containsB {
			merges = append(merges, c.Hash)
		}
	}
	return merges, nil
}
