// Copyright 2018 Sourced Technologies, S.L.
// SPDX-License-Identifier: Apache-2.0

package object

import (
	"context"

	"github.com/antgroup/zeta-ort/modules/plumbing"
)

// commit flags used while walking the ancestry graph of two candidate tips,
// mirroring git's PARENT1/PARENT2/STALE/RESULT bits in commit.c.
const (
	flagParent1 = 1 << iota
	flagParent2
	flagStale
)

type markedCommit struct {
	c     *Commit
	flags int
}

// MergeBase returns the best common ancestors between c and other: the set
// of commits reachable from both that are not themselves ancestors of any
// other commit in the result (i.e. the lowest common ancestors). An empty,
// nil-error result means the two commits share no history.
func (c *Commit) MergeBase(ctx context.Context, other *Commit) ([]*Commit, error) {
	marks := make(map[plumbing.Hash]*markedCommit)
	var queue []*markedCommit

	enqueue := func(cc *Commit, flag int) {
		if cc == nil {
			return
		}
		if m, ok := marks[cc.Hash]; ok {
			if m.flags&flag == 0 {
				m.flags |= flag
				queue = append(queue, m)
			}
			return
		}
		m := &markedCommit{c: cc, flags: flag}
		marks[cc.Hash] = m
		queue = append(queue, m)
	}

	enqueue(c, flagParent1)
	enqueue(other, flagParent2)

	var common []*markedCommit
	addedToCommon := make(map[plumbing.Hash]bool)
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		m := queue[0]
		queue = queue[1:]

		if m.flags&(flagParent1|flagParent2) == (flagParent1|flagParent2) && !addedToCommon[m.c.Hash] {
			addedToCommon[m.c.Hash] = true
			common = append(common, m)
		}

		for _, ph := range m.c.Parents {
			pc, err := m.c.b.Commit(ctx, ph)
			if err != nil {
				if plumbing.IsNoSuchObject(err) {
					continue
				}
				return nil, err
			}
			parentFlags := m.flags
			if pm, ok := marks[ph]; ok {
				parentFlags |= pm.flags
			}
			enqueue(pc, parentFlags&(flagParent1|flagParent2))
		}
	}
	if len(common) == 0 {
		return nil, nil
	}
	return reduceToIndependents(common), nil
}

// reduceToIndependents drops every candidate that is itself an ancestor of
// another candidate, leaving only the most recent common ancestors.
func reduceToIndependents(candidates []*markedCommit) []*Commit {
	independent := make([]*Commit, 0, len(candidates))
	for i, m := range candidates {
		isAncestorOfAnother := false
		for j, n := range candidates {
			if i == j {
				continue
			}
			if isAncestor(m.c, n.c) {
				isAncestorOfAnother = true
				break
			}
		}
		if !isAncestorOfAnother {
			independent = append(independent, m.c)
		}
	}
	return independent
}

// isAncestor reports whether a is reachable by following parents starting
// from b. Used only to dedupe the small candidate set merge-base produces,
// so a plain stack-based walk with a seen set is enough.
func isAncestor(a, b *Commit) bool {
	if a.Hash == b.Hash {
		return false
	}
	seen := map[plumbing.Hash]bool{}
	var stack = []*Commit{b}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur.Hash] {
			continue
		}
		seen[cur.Hash] = true
		for _, ph := range cur.Parents {
			if ph == a.Hash {
				return true
			}
			pc, err := cur.b.Commit(context.Background(), ph)
			if err != nil {
				continue
			}
			stack = append(stack, pc)
		}
	}
	return false
}
