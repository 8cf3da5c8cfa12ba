package docsync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpad/agentpad/pkg/codec"
	"github.com/agentpad/agentpad/pkg/frontmatter"
)

func newController(t *testing.T, text string, opts ...Option[*frontmatter.Document]) *Controller[*frontmatter.Document] {
	t.Helper()
	ctrl, err := New[*frontmatter.Document](frontmatter.Codec{}, text, opts...)
	require.NoError(t, err)
	return ctrl
}

func TestNewDecodesInitialText(t *testing.T) {
	var changes []Change
	ctrl := newController(t, "---\nname: original\n---\nOriginal body",
		WithNotify[*frontmatter.Document](func(ch Change) { changes = append(changes, ch) }))

	assert.Equal(t, "original", ctrl.State().Meta["name"])
	assert.Equal(t, "Original body", ctrl.State().Body)
	assert.Equal(t, "---\nname: original\n---\nOriginal body", ctrl.Text())

	// Initialization is not a change; no notification fires
	assert.Empty(t, changes)
}

func TestNewFailsOnMalformedText(t *testing.T) {
	_, err := New[*frontmatter.Document](frontmatter.Codec{}, "---\nunclosed: block")
	require.Error(t, err)

	var cerr *codec.Error
	assert.True(t, errors.As(err, &cerr))
}

func TestApplyLocalEditEmitsText(t *testing.T) {
	var changes []Change
	ctrl := newController(t, "---\nname: test-agent\n---\nBody",
		WithNotify[*frontmatter.Document](func(ch Change) { changes = append(changes, ch) }))

	next := ctrl.State().Clone()
	next.Update(map[string]any{"model": "opus"})
	require.NoError(t, ctrl.ApplyLocalEdit(next))

	require.Len(t, changes, 1)
	assert.Equal(t, OriginLocal, changes[0].Origin)
	assert.Contains(t, changes[0].Text, "model: opus")
	assert.Contains(t, changes[0].Text, "name: test-agent")
	assert.Equal(t, changes[0].Text, ctrl.Text())
}

func TestEchoIsNoOp(t *testing.T) {
	var changes []Change
	ctrl := newController(t, "---\nname: test-agent\n---\nBody",
		WithNotify[*frontmatter.Document](func(ch Change) { changes = append(changes, ch) }))

	next := ctrl.State().Clone()
	next.Update(map[string]any{"model": "opus"})
	require.NoError(t, ctrl.ApplyLocalEdit(next))
	emitted := ctrl.Text()

	before := ctrl.State()
	changed, err := ctrl.OnExternalChange(emitted)
	require.NoError(t, err)
	assert.False(t, changed)

	// No re-decode happened: state object identity is preserved
	assert.Same(t, before, ctrl.State())
	assert.Len(t, changes, 1)

	// Trailing whitespace differences still count as an echo
	changed, err = ctrl.OnExternalChange(emitted + "\n")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, before, ctrl.State())
}

func TestExternalReparse(t *testing.T) {
	var changes []Change
	ctrl := newController(t, "---\nname: original\n---\nOriginal body",
		WithNotify[*frontmatter.Document](func(ch Change) { changes = append(changes, ch) }))

	changed, err := ctrl.OnExternalChange("---\nname: updated\n---\nUpdated body")
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, "updated", ctrl.State().Meta["name"])
	assert.Equal(t, "Updated body", ctrl.State().Body)

	require.Len(t, changes, 1)
	assert.Equal(t, OriginExternal, changes[0].Origin)
}

func TestExternalDecodeFailureRetainsState(t *testing.T) {
	ctrl := newController(t, "---\nname: good\n---\nGood body")
	before := ctrl.State()
	beforeText := ctrl.Text()

	changed, err := ctrl.OnExternalChange("---\nname: broken\nnever closed")
	require.Error(t, err)
	assert.False(t, changed)

	var cerr *codec.Error
	assert.True(t, errors.As(err, &cerr))

	// Last-good state and text survive the failed decode
	assert.Same(t, before, ctrl.State())
	assert.Equal(t, beforeText, ctrl.Text())
	assert.Equal(t, "good", ctrl.State().Meta["name"])
}

func TestWithEquivalence(t *testing.T) {
	// Treat all whitespace as insignificant
	looseEq := func(a, b string) bool {
		strip := func(s string) string {
			out := make([]rune, 0, len(s))
			for _, r := range s {
				if r != ' ' && r != '\n' && r != '\t' {
					out = append(out, r)
				}
			}
			return string(out)
		}
		return strip(a) == strip(b)
	}

	ctrl := newController(t, "---\nname: x\n---\nBody",
		WithEquivalence[*frontmatter.Document](looseEq))

	before := ctrl.State()
	changed, err := ctrl.OnExternalChange("---\nname:    x\n---\n\n\nBody")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, before, ctrl.State())
}

func TestLocalEditsAreDistinguishableFromEchoes(t *testing.T) {
	// Two different local edits that serialize to the same text are both
	// reported as local changes; the origin tag carries provenance so
	// hosts do not have to value-sniff.
	var origins []Origin
	ctrl := newController(t, "body only",
		WithNotify[*frontmatter.Document](func(ch Change) { origins = append(origins, ch.Origin) }))

	first := ctrl.State().Clone()
	first.Body = "same text"
	require.NoError(t, ctrl.ApplyLocalEdit(first))

	second := ctrl.State().Clone()
	second.Body = "same text"
	require.NoError(t, ctrl.ApplyLocalEdit(second))

	assert.Equal(t, []Origin{OriginLocal, OriginLocal}, origins)
	assert.Same(t, second, ctrl.State())
}

func TestStateReplacedWholesale(t *testing.T) {
	ctrl := newController(t, "---\na: 1\nb: 2\n---\nBody")

	next := frontmatter.NewDocument()
	next.Meta["c"] = 3
	next.Body = "New body"
	require.NoError(t, ctrl.ApplyLocalEdit(next))

	// Previous keys do not leak into the replacement state
	assert.NotContains(t, ctrl.State().Meta, "a")
	assert.NotContains(t, ctrl.State().Meta, "b")
	assert.Equal(t, 3, ctrl.State().Meta["c"])
}
