// Package session manages live editing sessions. Each session owns one
// document's synchronization controller: local edits flow through the
// controller and persist to the workspace, external changes (file
// watcher, reload requests) re-derive the structured state.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/agentpad/agentpad/pkg/docsync"
	"github.com/agentpad/agentpad/pkg/frontmatter"
	"github.com/agentpad/agentpad/pkg/logger"
	"github.com/agentpad/agentpad/pkg/schema"
	"github.com/agentpad/agentpad/pkg/store"
)

// Session is one open document
type Session struct {
	ID   string
	Path string
	Kind schema.Kind

	mu   sync.Mutex
	ws   *store.Workspace
	ctrl *docsync.Controller[*frontmatter.Document]
	rev  int
}

// Snapshot is a read-only view of a session's current state
type Snapshot struct {
	ID   string         `json:"id"`
	Path string         `json:"path"`
	Kind schema.Kind    `json:"kind"`
	Meta map[string]any `json:"frontmatter"`
	Body string         `json:"body"`
	Text string         `json:"text"`
	Rev  int            `json:"rev"`
}

// Snapshot returns the session's current state for rendering
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.ctrl.State().Clone()
	return Snapshot{
		ID:   s.ID,
		Path: s.Path,
		Kind: s.Kind,
		Meta: doc.Meta,
		Body: doc.Body,
		Text: s.ctrl.Text(),
		Rev:  s.rev,
	}
}

// UpdateMeta applies a merge patch to the document's frontmatter and
// persists the re-serialized text. Keys absent from the patch survive;
// nil values delete keys.
func (s *Session) UpdateMeta(ctx context.Context, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.ctrl.State().Clone()
	next.Update(patch)
	return s.applyLocked(ctx, next)
}

// SetBody replaces the document body and persists the result
func (s *Session) SetBody(ctx context.Context, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.ctrl.State().Clone()
	next.Body = body
	return s.applyLocked(ctx, next)
}

func (s *Session) applyLocked(ctx context.Context, next *frontmatter.Document) error {
	if err := s.ctrl.ApplyLocalEdit(next); err != nil {
		return err
	}
	if err := s.ws.Save(ctx, s.Path, s.ctrl.Text()); err != nil {
		return errors.Wrapf(err, "failed to persist session '%s'", s.ID)
	}
	return nil
}

// Reload handles an externally supplied canonical text. Echoes of the
// session's own last write are no-ops; a malformed document leaves the
// last-good state in place and returns the error.
func (s *Session) Reload(ctx context.Context, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.ctrl.OnExternalChange(text)
	if err != nil {
		logger.G(ctx).WithField("session", s.ID).WithError(err).Warn("External change rejected, keeping last-good state")
		return false, err
	}
	if changed {
		logger.G(ctx).WithField("session", s.ID).Debug("Re-derived state from external change")
	}
	return changed, nil
}

// Validate checks the document's frontmatter against the schema for its
// kind, reporting every problem
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Kind == schema.KindUnknown {
		return errors.Errorf("document '%s' has no known schema", s.Path)
	}
	return schema.ValidateMeta(s.Kind, s.ctrl.State().Meta)
}

// Manager owns the set of live sessions for one workspace
type Manager struct {
	mu       sync.Mutex
	ws       *store.Workspace
	sessions map[string]*Session // by ID
	byPath   map[string]string   // path -> ID
}

// NewManager creates a session manager over a workspace
func NewManager(ws *store.Workspace) *Manager {
	return &Manager{
		ws:       ws,
		sessions: make(map[string]*Session),
		byPath:   make(map[string]string),
	}
}

// Open loads a document and starts an editing session for it. Opening a
// path that already has a session returns the existing one.
func (m *Manager) Open(ctx context.Context, path string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byPath[path]; ok {
		return m.sessions[id], nil
	}

	text, err := m.ws.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:   uuid.NewString(),
		Path: path,
		Kind: schema.KindForPath(path),
		ws:   m.ws,
	}

	ctrl, err := docsync.New[*frontmatter.Document](frontmatter.Codec{}, text,
		docsync.WithNotify[*frontmatter.Document](func(ch docsync.Change) {
			sess.rev++
			logger.G(ctx).WithFields(map[string]any{
				"session": sess.ID,
				"origin":  ch.Origin.String(),
				"rev":     sess.rev,
			}).Debug("Canonical text changed")
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open session for '%s'", path)
	}
	sess.ctrl = ctrl

	m.sessions[sess.ID] = sess
	m.byPath[path] = sess.ID

	logger.G(ctx).WithFields(map[string]any{
		"session": sess.ID,
		"path":    path,
		"kind":    sess.Kind,
	}).Info("Opened editing session")
	return sess, nil
}

// Get returns a session by ID
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, errors.Errorf("session '%s' not found", id)
	}
	return sess, nil
}

// FindByPath returns the live session for a document, if any
func (m *Manager) FindByPath(path string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byPath[path]
	if !ok {
		return nil, false
	}
	return m.sessions[id], true
}

// List returns all live sessions
func (m *Manager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Close ends a session. The document stays on disk; only the in-memory
// state is destroyed.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return errors.Errorf("session '%s' not found", id)
	}
	delete(m.sessions, id)
	delete(m.byPath, sess.Path)
	return nil
}

// HandleEvent routes a workspace change event to the session editing
// that document. Events for documents without a session are ignored.
func (m *Manager) HandleEvent(ctx context.Context, ev store.Event) {
	sess, ok := m.FindByPath(ev.Path)
	if !ok {
		return
	}
	if _, err := sess.Reload(ctx, ev.Text); err != nil {
		logger.G(ctx).WithField("path", ev.Path).WithError(err).Warn("Ignoring malformed external change")
	}
}
