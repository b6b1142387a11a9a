// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package zeta

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/antgroup/zeta-ort/modules/plumbing"
	"github.com/antgroup/zeta-ort/modules/strengthen"
	"github.com/antgroup/zeta-ort/modules/zeta/backend"
	"github.com/antgroup/zeta-ort/modules/zeta/config"
	"github.com/antgroup/zeta-ort/modules/zeta/object"
	"github.com/antgroup/zeta-ort/modules/zeta/reflog"
	"github.com/antgroup/zeta-ort/modules/zeta/refs"
	"github.com/antgroup/zeta-ort/pkg/tr"
	"github.com/antgroup/zeta-ort/pkg/zeta/odb"
)

const (
	// ZetaDirName this is a special folder where all the zeta stuff is.
	ZetaDirName = ".zeta"
)

type StringArray []string

func valuesMapArray(values []string) map[string]StringArray {
	m := make(map[string]StringArray)
	for _, v := range values {
		i := strings.IndexByte(v, '=')
		if i == -1 {
			continue
		}
		k := strings.ToLower(v[:i])
		v := v[i+1:]
		if _, ok := m[k]; ok {
			m[k] = append(m[k], v)
			continue
		}
		m[k] = []string{v}
	}
	return m
}

func getStringFromValues(k string, values map[string]StringArray) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	sa, ok := values[strings.ToLower(k)]
	if !ok {
		return "", false
	}
	if len(sa) == 0 {
		return "", true
	}
	return sa[len(sa)-1], true
}

func getStringsFromValues(k string, values map[string]StringArray) ([]string, bool) {
	if len(values) == 0 {
		return nil, false
	}
	sa, ok := values[strings.ToLower(k)]
	if !ok {
		return nil, false
	}
	return sa, true
}

func getFromValueOrEnv(k, e string, values map[string]StringArray) (string, bool) {
	if s, ok := getStringFromValues(k, values); ok {
		return s, true
	}
	return os.LookupEnv(e)
}

type Repository struct {
	*config.Config
	refs.Backend
	odb               *odb.ODB
	rdb               *reflog.DB
	baseDir           string // worktree
	zetaDir           string
	missingNotFailure bool
	values            map[string]StringArray
	quiet             bool
	verbose           bool
}

func parseSharingRoot(cfg *config.Config, values map[string]StringArray) (string, bool) {
	if sharingRoot, ok := getStringFromValues("core.sharingRoot", values); ok && len(sharingRoot) > 0 && filepath.IsAbs(sharingRoot) {
		return sharingRoot, true
	}
	if sharingRoot, ok := os.LookupEnv(ENV_ZETA_CORE_SHARING_ROOT); ok && len(sharingRoot) > 0 && filepath.IsAbs(sharingRoot) {
		return sharingRoot, true
	}
	if len(cfg.Core.SharingRoot) > 0 && filepath.IsAbs(cfg.Core.SharingRoot) {
		return cfg.Core.SharingRoot, true
	}
	return "", false
}

type OpenOptions struct {
	Worktree string
	Quiet    bool
	Verbose  bool
	Values   []string
}

func Open(ctx context.Context, opts *OpenOptions) (*Repository, error) {
	worktree, zetaDir, err := FindZetaDir(opts.Worktree)
	if err != nil {
		die_error("%v", err)
		return nil, err
	}
	cfg, err := config.Load(zetaDir)
	if err != nil {
		die_error("%v", err)
		return nil, err
	}
	odbOpts := make([]backend.Option, 0, 2)
	odbOpts = append(odbOpts, backend.WithCompressionALGO(cfg.Core.CompressionALGO), backend.WithEnableLRU(true))
	values := valuesMapArray(opts.Values)

	if sharingRoot, sharingSet := parseSharingRoot(cfg, values); sharingSet {
		odbOpts = append(odbOpts, backend.WithSharingRoot(sharingRoot))
	}
	odb, err := odb.NewODB(zetaDir, odbOpts...)
	if err != nil {
		die("open odb: %v", err)
		return nil, err
	}
	r := &Repository{
		Config:  cfg,
		zetaDir: zetaDir,
		baseDir: worktree,
		odb:     odb,
		Backend: refs.NewBackend(zetaDir),
		rdb:     reflog.NewDB(zetaDir),
		values:  values,
		quiet:   opts.Quiet,
		verbose: opts.Verbose,
	}
	return r, nil
}

func (r *Repository) getFromValueOrEnv(k, e string) (string, bool) {
	return getFromValueOrEnv(k, e, r.values)
}

func (r *Repository) getIntFromValueOrEnv(k, e string) (int, bool) {
	a, ok := getFromValueOrEnv(k, e, r.values)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(a)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (r *Repository) getSizeFromValueOrEnv(k, e string) (int64, bool) {
	a, ok := getFromValueOrEnv(k, e, r.values)
	if !ok {
		return 0, false
	}
	if size, err := strengthen.ParseSize(a); err == nil {
		return size, true
	}
	return 0, false
}

func (r *Repository) Accelerator() config.Accelerator {
	if s, ok := r.getFromValueOrEnv("core.accelerator", ENV_ZETA_CORE_ACCELERATOR); ok {
		return config.Accelerator(s)
	}
	return r.Core.Accelerator
}

func (r *Repository) IsExtreme() bool {
	if s, ok := r.getFromValueOrEnv("core.optimizeStrategy", ENV_ZETA_CORE_OPTIMIZE_STRATEGY); ok {
		return config.Strategy(s) == config.STRATEGY_EXTREME
	}
	return r.Core.IsExtreme()
}

func (r *Repository) ConcurrentTransfers() int {
	if i, ok := r.getIntFromValueOrEnv("core.concurrenttransfers", ENV_ZETA_CORE_CONCURRENT_TRANSFERS); ok && i > 0 && i < 50 {
		return i
	}
	if r.Core.ConcurrentTransfers > 0 && r.Core.ConcurrentTransfers < 50 {
		return r.Core.ConcurrentTransfers
	}
	return 1
}

func (r *Repository) authorName() string {
	if s, ok := r.getFromValueOrEnv("user.name", ENV_ZETA_AUTHOR_NAME); ok && len(s) > 0 {
		return stringNoCRUD(s)
	}
	return stringNoCRUD(r.User.Name)
}

func (r *Repository) authorEmail() string {
	if s, ok := r.getFromValueOrEnv("user.email", ENV_ZETA_AUTHOR_EMAIL); ok && len(s) > 0 {
		return stringNoCRUD(s)
	}
	return stringNoCRUD(r.User.Email)
}

func (r *Repository) committerName() string {
	if s, ok := r.getFromValueOrEnv("user.name", ENV_ZETA_COMMITTER_NAME); ok && len(s) > 0 {
		return stringNoCRUD(s)
	}
	return stringNoCRUD(r.User.Name)
}

func (r *Repository) committerEmail() string {
	if s, ok := r.getFromValueOrEnv("user.email", ENV_ZETA_COMMITTER_EMAIL); ok && len(s) > 0 {
		return stringNoCRUD(s)
	}
	return stringNoCRUD(r.User.Email)
}

func (r *Repository) NewCommitter() *object.Signature {
	return &object.Signature{
		Name:  r.committerName(),
		Email: r.committerEmail(),
		When:  time.Now(),
	}
}

func (r *Repository) coreEditor() string {
	if s, ok := r.getFromValueOrEnv("core.editor", ENV_ZETA_EDITOR); ok && len(s) > 0 {
		return s
	}
	return r.Core.Editor
}

func (r *Repository) diffAlgorithm() string {
	if a, ok := getStringFromValues("diff.algorithm", r.values); ok && len(a) > 0 {
		return a
	}
	return r.Diff.Algorithm
}

func (r *Repository) mergeConflictStyle() string {
	if conflictStyle, ok := getStringFromValues("merge.conflictStyle", r.values); ok && len(conflictStyle) > 0 {
		return conflictStyle
	}
	return r.Merge.ConflictStyle
}

func (r *Repository) Postflight(ctx context.Context) error {
	if !r.IsExtreme() {
		return nil
	}
	oids, totalSize, err := r.odb.PruneObjects(ctx, extremeSize)
	if err != nil {
		return err
	}
	if len(oids) == 0 {
		return nil
	}
	_, _ = tr.Fprintf(os.Stderr, "postflight: remove large files in extreme mode: %d, reduce: %s.", len(oids), strengthen.FormatSize(totalSize))
	return nil
}

func (r *Repository) BaseDir() string {
	return r.baseDir
}

func (r *Repository) ZetaDir() string {
	return r.zetaDir
}

func (r *Repository) Current() (*plumbing.Reference, error) {
	ref, err := r.HEAD()
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, plumbing.ErrReferenceNotFound
	}
	if ref.Type() == plumbing.HashReference {
		return ref, nil
	}
	return r.Reference(ref.Target())
}

func (r *Repository) ODB() *odb.ODB {
	return r.odb
}

func (r *Repository) RDB() refs.Backend {
	return r.Backend
}

func (r *Repository) ReferenceResolve(name plumbing.ReferenceName) (ref *plumbing.Reference, err error) {
	return refs.ReferenceResolve(r.Backend, name)
}

func (r *Repository) Close() error {
	if r.odb == nil {
		return nil
	}
	return r.odb.Close()
}
