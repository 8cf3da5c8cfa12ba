// Package store manages the on-disk workspace that holds the documents
// being edited: skills packaged as directories with a SKILL.md, agent
// definitions under agents/, and slash commands under commands/. The
// store deals in canonical text only; structure is the codec's business.
package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/agentpad/agentpad/pkg/logger"
	"github.com/agentpad/agentpad/pkg/schema"
)

const skillFileName = "SKILL.md"

// Workspace is a directory tree of editable documents
type Workspace struct {
	root   string
	ignore []string
}

// Option configures a Workspace
type Option func(*Workspace) error

// WithIgnorePatterns adds doublestar patterns whose matches are excluded
// from listings and watch events (matched against workspace-relative paths)
func WithIgnorePatterns(patterns ...string) Option {
	return func(w *Workspace) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("invalid ignore pattern '%s'", p)
			}
		}
		w.ignore = append(w.ignore, patterns...)
		return nil
	}
}

// Open opens an existing workspace rooted at dir
func Open(dir string, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve workspace root '%s'", dir)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "workspace root '%s' not accessible", abs)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("workspace root '%s' is not a directory", abs)
	}

	w := &Workspace{root: abs}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Root returns the absolute workspace root
func (w *Workspace) Root() string {
	return w.root
}

// DocumentRef identifies one document in the workspace
type DocumentRef struct {
	Path string      `json:"path"` // workspace-relative, slash-separated
	Kind schema.Kind `json:"kind"`
}

// List enumerates the workspace's documents in path order
func (w *Workspace) List(ctx context.Context) ([]DocumentRef, error) {
	var refs []DocumentRef

	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if w.ignored(rel) {
			return nil
		}

		kind := schema.KindForPath(rel)
		if kind == schema.KindUnknown {
			return nil
		}
		refs = append(refs, DocumentRef{Path: rel, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk workspace")
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })

	logger.G(ctx).WithField("count", len(refs)).Debug("Listed workspace documents")
	return refs, nil
}

func (w *Workspace) ignored(rel string) bool {
	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// resolve maps a workspace-relative path to an absolute one, rejecting
// paths that escape the root
func (w *Workspace) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", errors.Errorf("path '%s' escapes the workspace", rel)
	}
	return filepath.Join(w.root, clean), nil
}

// Load reads a document's canonical text
func (w *Workspace) Load(ctx context.Context, rel string) (string, error) {
	path, err := w.resolve(rel)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read document '%s'", rel)
	}

	logger.G(ctx).WithField("path", rel).Debug("Loaded document")
	return string(content), nil
}

// Save writes a document's canonical text atomically: the content lands
// in a temp file first and is moved into place with a rename
func (w *Workspace) Save(ctx context.Context, rel string, text string) error {
	path, err := w.resolve(rel)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for '%s'", rel)
	}

	tmp, err := os.CreateTemp(dir, ".agentpad-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write document '%s'", rel)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to flush document '%s'", rel)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to move document '%s' into place", rel)
	}

	logger.G(ctx).WithField("path", rel).Debug("Saved document")
	return nil
}

// Exists reports whether a document is present
func (w *Workspace) Exists(rel string) bool {
	path, err := w.resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
