package object

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/antgroup/zeta-ort/modules/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockBackend is a test implementation of Backend interface for testing commit walkers
type MockBackend struct {
	commits map[plumbing.Hash]*Commit
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		commits: make(map[plumbing.Hash]*Commit),
	}
}

func (m *MockBackend) AddCommit(commit *Commit) {
	commit.b = m // Set the backend on the commit
	m.commits[commit.Hash] = commit
}

func (m *MockBackend) Commit(ctx context.Context, hash plumbing.Hash) (*Commit, error) {
	c, ok := m.commits[hash]
	if !ok {
		return nil, plumbing.NoSuchObject(hash)
	}
	return c, nil
}

func (m *MockBackend) Tree(ctx context.Context, hash plumbing.Hash) (*Tree, error) {
	return nil, plumbing.NoSuchObject(hash)
}

func (m *MockBackend) Blob(ctx context.Context, hash plumbing.Hash) (*Blob, error) {
	return nil, plumbing.NoSuchObject(hash)
}

// NewTestCommit creates a test commit with the given parameters
func NewTestCommit(hash string, message string, parents ...*Commit) *Commit {
	c := &Commit{
		Hash:      plumbing.NewHash(hash),
		Parents:   make([]plumbing.Hash, len(parents)),
		Message:   message,
		Author:    Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()},
		Committer: Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()},
	}
	for i, p := range parents {
		c.Parents[i] = p.Hash
	}
	return c
}

// TestCommitPreorderIter tests basic preorder traversal of commits
func TestCommitPreorderIter(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a simple commit graph: C3 <- C2 <- C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c2)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)

	iter := NewCommitPreorderIter(c3, nil, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, len(commits))
	assert.Equal(t, "C3", commits[0].Message)
	assert.Equal(t, "C2", commits[1].Message)
	assert.Equal(t, "C1", commits[2].Message)
}

// TestCommitPreorderIterWithMerge tests preorder traversal with merge commits
func TestCommitPreorderIterWithMerge(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a merge commit graph:
	//     M (merge)
	//    / \
	//   C2  C3
	//    \ /
	//     C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c1)
	m := NewTestCommit("4444444444444444444444444444444444444444", "M", c2, c3)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)
	backend.AddCommit(m)

	iter := NewCommitPreorderIter(m, nil, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 4, len(commits))
	assert.Contains(t, commits, m)
	assert.Contains(t, commits, c2)
	assert.Contains(t, commits, c3)
	assert.Contains(t, commits, c1)
}

// TestCommitPreorderIterDeduplication tests that commits are not visited twice
func TestCommitPreorderIterDeduplication(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a diamond graph:
	//     M
	//    / \
	//   C2  C3
	//    \ /
	//     C1
	// C1 should be visited only once
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c1)
	m := NewTestCommit("4444444444444444444444444444444444444444", "M", c2, c3)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)
	backend.AddCommit(m)

	iter := NewCommitPreorderIter(m, nil, nil)
	defer iter.Close()

	var c1Count int
	err := iter.ForEach(ctx, func(commit *Commit) error {
		if commit.Hash == c1.Hash {
			c1Count++
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, c1Count, "C1 should be visited exactly once")
}

// TestCommitBFSIter tests breadth-first search traversal
func TestCommitBFSIter(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a linear graph: C4 <- C3 <- C2 <- C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c2)
	c4 := NewTestCommit("4444444444444444444444444444444444444444", "C4", c3)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)
	backend.AddCommit(c4)

	iter := NewCommitIterBFS(c4, nil, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 4, len(commits))
	// BFS visits level by level
	assert.Equal(t, "C4", commits[0].Message)
	assert.Equal(t, "C3", commits[1].Message)
	assert.Equal(t, "C2", commits[2].Message)
	assert.Equal(t, "C1", commits[3].Message)
}

// TestCommitBFSIterWithMerge tests BFS traversal with merge commits
func TestCommitBFSIterWithMerge(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a merge commit graph:
	//     M
	//    / \
	//   C2  C3
	//    \ /
	//     C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c1)
	m := NewTestCommit("4444444444444444444444444444444444444444", "M", c2, c3)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)
	backend.AddCommit(m)

	iter := NewCommitIterBFS(m, nil, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 4, len(commits))
	assert.Contains(t, commits, m)
	assert.Contains(t, commits, c2)
	assert.Contains(t, commits, c3)
	assert.Contains(t, commits, c1)
}

// TestCommitCTimeIter tests committer-time order traversal
func TestCommitCTimeIter(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a simple commit graph: C3 <- C2 <- C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c2)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)

	iter := NewCommitIterCTime(c3, nil, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, len(commits))
	// Committer-time order visits the newest commit first
	assert.Equal(t, "C3", commits[0].Message)
	assert.Equal(t, "C2", commits[1].Message)
	assert.Equal(t, "C1", commits[2].Message)
}

// TestFilterCommitIter tests filtering commits during traversal
func TestFilterCommitIter(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a linear graph: C4 <- C3 <- C2 <- C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c2)
	c4 := NewTestCommit("4444444444444444444444444444444444444444", "C4", c3)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)
	backend.AddCommit(c4)

	// Filter: only return commits with even message length (C1..C4 all have length 2)
	var isValid CommitFilter = func(c *Commit) bool {
		return len(c.Message)%2 == 0
	}

	iter := NewFilterCommitIter(c4, &isValid, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err)
	// Every returned commit passes the filter
	for _, c := range commits {
		assert.Equal(t, 2, len(c.Message), "All filtered commits should have message length 2")
	}
	// C2 and C4 are definitely in the list
	assert.Contains(t, commits, c2)
	assert.Contains(t, commits, c4)
}

// TestFilterCommitIterWithLimit tests limiting commit traversal
func TestFilterCommitIterWithLimit(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a linear graph: C4 <- C3 <- C2 <- C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c2)
	c4 := NewTestCommit("4444444444444444444444444444444444444444", "C4", c3)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)
	backend.AddCommit(c4)

	// Limit: stop traversal at C2 (don't visit its parents)
	var isLimit CommitFilter = func(c *Commit) bool {
		return c.Hash == c2.Hash
	}

	iter := NewFilterCommitIter(c4, nil, &isLimit)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err)
	// BFS order: C4, C3, C2
	// C2 is a limit, so C1 should not be visited
	assert.Equal(t, 3, len(commits))
	assert.Contains(t, commits, c4)
	assert.Contains(t, commits, c3)
	assert.Contains(t, commits, c2)
	assert.NotContains(t, commits, c1, "C1 should not be visited as it's beyond the limit")
}

// TestCommitWalkerShallowClone tests that commit walkers handle missing commits gracefully
// This is critical for zeta's default shallow clone behavior
func TestCommitWalkerShallowClone(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create commits
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c2)

	// Simulate shallow clone: only C3 and C2 are available, C1 is missing
	backend.AddCommit(c2)
	backend.AddCommit(c3)

	// Test with FilterCommitIter
	iter := NewFilterCommitIter(c3, nil, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err, "Should not error on missing commits in shallow clone")
	// Should traverse C3 and C2, skipping missing C1 gracefully
	assert.Equal(t, 2, len(commits))
	assert.Contains(t, commits, c3)
	assert.Contains(t, commits, c2)
}

// TestCommitWalkerShallowCloneWithMerge tests shallow clone with merge commits
func TestCommitWalkerShallowCloneWithMerge(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	// Create a merge commit graph:
	//     M
	//    / \
	//   C2  C3
	//    \ /
	//     C1
	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c1)
	m := NewTestCommit("4444444444444444444444444444444444444444", "M", c2, c3)

	// Simulate shallow clone: only M and C2 are available, C3 and C1 are missing
	backend.AddCommit(m)
	backend.AddCommit(c2)

	// Test with FilterCommitIter
	iter := NewFilterCommitIter(m, nil, nil)
	defer iter.Close()

	var commits []*Commit
	err := iter.ForEach(ctx, func(commit *Commit) error {
		commits = append(commits, commit)
		return nil
	})

	require.NoError(t, err, "Should not error on missing commits in shallow clone")
	// Should traverse M and C2, skipping missing C3 and C1 gracefully
	assert.Equal(t, 2, len(commits))
	assert.Contains(t, commits, m)
	assert.Contains(t, commits, c2)
}

// TestCommitWalkerContextCancellation tests that walkers respect context cancellation
func TestCommitWalkerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	backend := NewMockBackend()

	// Create a long chain of commits
	var commits []*Commit
	for i := 0; i < 100; i++ {
		var hash plumbing.Hash
		hash[0] = byte(i + 1)
		c := NewTestCommit(hash.String(), "C"+string(rune('0'+i)))
		if len(commits) > 0 {
			c.Parents = []plumbing.Hash{commits[len(commits)-1].Hash}
		}
		commits = append(commits, c)
		backend.AddCommit(c)
	}

	// Start traversal
	iter := NewCommitPreorderIter(commits[len(commits)-1], nil, nil)
	defer iter.Close()

	// Cancel the context immediately
	cancel()

	// Try to iterate - should stop quickly or error
	count := 0
	_ = iter.ForEach(ctx, func(commit *Commit) error {
		count++
		return nil
	})

	// Verify that iteration stopped (either immediately or after a few commits)
	// The exact behavior depends on the implementation
	assert.True(t, count < 100, "Should not process all commits after cancellation")
}

// TestCommitIterForEachStop tests that ErrStop stops traversal
func TestCommitIterForEachStop(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)
	c3 := NewTestCommit("3333333333333333333333333333333333333333", "C3", c2)

	backend.AddCommit(c1)
	backend.AddCommit(c2)
	backend.AddCommit(c3)

	iter := NewCommitPreorderIter(c3, nil, nil)
	defer iter.Close()

	count := 0
	err := iter.ForEach(ctx, func(commit *Commit) error {
		count++
		// Stop after 2 commits
		if count == 2 {
			return plumbing.ErrStop
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count, "Should stop after ErrStop")
}

// TestCommitIterNextDirectly tests calling Next() directly
func TestCommitIterNextDirectly(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")
	c2 := NewTestCommit("2222222222222222222222222222222222222222", "C2", c1)

	backend.AddCommit(c1)
	backend.AddCommit(c2)

	iter := NewCommitPreorderIter(c2, nil, nil)
	defer iter.Close()

	// First commit
	c, err := iter.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C2", c.Message)

	// Second commit
	c, err = iter.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C1", c.Message)

	// EOF
	c, err = iter.Next(ctx)
	require.Equal(t, io.EOF, err)
	assert.Nil(t, c)
}

// TestCommitIterClose tests that Close() properly cleans up resources
func TestCommitIterClose(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")

	backend.AddCommit(c1)

	iter := NewCommitPreorderIter(c1, nil, nil)

	// Get a commit
	c, err := iter.Next(ctx)
	require.NoError(t, err)
	assert.NotNil(t, c)

	// Close the iterator
	iter.Close()

	// Try to get another commit after close
	c, err = iter.Next(ctx)
	require.Error(t, err)
	assert.Nil(t, c)
}

// TestCommitWalkerErrorPropagation tests that errors are properly propagated
func TestCommitWalkerErrorPropagation(t *testing.T) {
	ctx := t.Context()
	backend := NewMockBackend()

	c1 := NewTestCommit("1111111111111111111111111111111111111111", "C1")

	backend.AddCommit(c1)

	iter := NewCommitPreorderIter(c1, nil, nil)
	defer iter.Close()

	// Return an error from the callback
	expectedErr := io.EOF
	err := iter.ForEach(ctx, func(commit *Commit) error {
		return expectedErr
	})

	require.Equal(t, expectedErr, err)
}
