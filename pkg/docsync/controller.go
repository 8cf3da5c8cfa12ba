// Package docsync keeps a canonical text document and its structured
// in-memory representation convergent across edits originating from
// either side. A Controller owns the structured state for one editing
// session: local edits replace the state wholesale and re-serialize to
// text, external text changes force a full re-decode. Echoes of the
// controller's own output are recognized and ignored so host frameworks
// that feed emitted text back as input cannot start a feedback loop.
//
// Everything runs synchronously in the calling goroutine. A controller
// belongs to exactly one editing session; callers that share a session
// across goroutines serialize access themselves.
package docsync

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/agentpad/agentpad/pkg/codec"
)

// Origin tags where a change came from, so hosts never have to infer
// provenance by comparing text values
type Origin int

const (
	// OriginLocal marks a change produced by ApplyLocalEdit
	OriginLocal Origin = iota
	// OriginExternal marks a change accepted by OnExternalChange
	OriginExternal
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Change is delivered to the host's notification callback whenever the
// canonical text moves, carrying the new text and its origin
type Change struct {
	Text   string
	Origin Origin
}

// Controller synchronizes one document's canonical text with its
// structured state through a codec
type Controller[S any] struct {
	codec         codec.Codec[S]
	state         S
	lastKnownText string
	notify        func(Change)
	equivalent    func(a, b string) bool
}

// Option configures a Controller
type Option[S any] func(*Controller[S])

// WithNotify registers a callback invoked synchronously after every
// accepted change, local or external. Hosts that persist the canonical
// text should act on OriginLocal changes only; OriginExternal changes
// were supplied by the host in the first place.
func WithNotify[S any](fn func(Change)) Option[S] {
	return func(c *Controller[S]) {
		c.notify = fn
	}
}

// WithEquivalence overrides the check used to recognize an echo of the
// controller's own emission. The default compares trimmed strings.
func WithEquivalence[S any](eq func(a, b string) bool) Option[S] {
	return func(c *Controller[S]) {
		c.equivalent = eq
	}
}

func trimmedEqual(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// New constructs a controller from the initial canonical text. The
// decode happens here, once; initialization is not a change notification
// and triggers no callback. A decode failure fails construction.
func New[S any](cdc codec.Codec[S], initialText string, opts ...Option[S]) (*Controller[S], error) {
	c := &Controller[S]{
		codec:      cdc,
		equivalent: trimmedEqual,
	}
	for _, opt := range opts {
		opt(c)
	}

	state, err := cdc.Decode(initialText)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode initial text")
	}
	c.state = state
	c.lastKnownText = initialText
	return c, nil
}

// State returns the current structured state snapshot for rendering
func (c *Controller[S]) State() S {
	return c.state
}

// Text returns the canonical text the state was last derived from or
// serialized to
func (c *Controller[S]) Text() string {
	return c.lastKnownText
}

// ApplyLocalEdit replaces the structured state wholesale, re-serializes
// it, and synchronously notifies the host with an OriginLocal change.
// An encode failure leaves both state and text untouched.
func (c *Controller[S]) ApplyLocalEdit(state S) error {
	text, err := c.codec.Encode(state)
	if err != nil {
		return errors.Wrap(err, "failed to serialize local edit")
	}

	c.state = state
	c.lastKnownText = text
	if c.notify != nil {
		c.notify(Change{Text: text, Origin: OriginLocal})
	}
	return nil
}

// OnExternalChange handles canonical text that changed for a reason
// outside this controller. Text equivalent to the controller's own last
// emission is a no-op: the state object is untouched and false is
// returned. Genuine changes fully replace the state via re-decode and
// return true. A decode failure retains the last-good state and returns
// the error; there is no transient condition, so nothing is retried.
func (c *Controller[S]) OnExternalChange(text string) (bool, error) {
	if c.equivalent(text, c.lastKnownText) {
		return false, nil
	}

	state, err := c.codec.Decode(text)
	if err != nil {
		return false, errors.Wrap(err, "failed to decode external change")
	}

	c.state = state
	c.lastKnownText = text
	if c.notify != nil {
		c.notify(Change{Text: text, Origin: OriginExternal})
	}
	return true, nil
}
