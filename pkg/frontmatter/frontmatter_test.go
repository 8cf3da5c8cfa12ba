package frontmatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpad/agentpad/pkg/codec"
)

func TestDecodeNoFrontmatter(t *testing.T) {
	doc, err := Decode("Plain content without frontmatter")
	require.NoError(t, err)
	assert.Empty(t, doc.Meta)
	assert.Equal(t, "Plain content without frontmatter", doc.Body)
}

func TestDecodeEmptyBlock(t *testing.T) {
	doc, err := Decode("---\n---\nJust body content")
	require.NoError(t, err)
	assert.Empty(t, doc.Meta)
	assert.Equal(t, "Just body content", doc.Body)
}

func TestDecodeBasic(t *testing.T) {
	doc, err := Decode("---\nname: test-agent\ndescription: A test agent\n---\nAgent instructions here.")
	require.NoError(t, err)
	assert.Equal(t, "test-agent", doc.Meta["name"])
	assert.Equal(t, "A test agent", doc.Meta["description"])
	assert.Equal(t, "Agent instructions here.", doc.Body)
}

func TestDecodeUnclosedBlock(t *testing.T) {
	_, err := Decode("---\nname: broken\nno closing delimiter")
	require.Error(t, err)

	var cerr *codec.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, codec.OpDecode, cerr.Op)
}

func TestDecodeMalformedYAML(t *testing.T) {
	_, err := Decode("---\nname: [unbalanced\n---\nbody")
	require.Error(t, err)

	var cerr *codec.Error
	require.True(t, errors.As(err, &cerr))
}

func TestDecodeNestedAndListValues(t *testing.T) {
	text := `---
name: deploy
defaults:
  region: us-east-1
  retries: 3
allowed-tools:
  - bash
  - file_edit
---
Run the deployment.`

	doc, err := Decode(text)
	require.NoError(t, err)

	defaults, ok := doc.Meta["defaults"].(map[string]any)
	require.True(t, ok, "nested mappings should normalize to map[string]any")
	assert.Equal(t, "us-east-1", defaults["region"])
	assert.Equal(t, 3, defaults["retries"])

	tools, ok := doc.Meta["allowed-tools"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"bash", "file_edit"}, tools)
}

func TestEncodeDeterministicKeyOrder(t *testing.T) {
	doc := &Document{
		Meta: map[string]any{
			"name":        "n",
			"description": "d",
		},
		Body: "body",
	}

	out, err := Encode(doc)
	require.NoError(t, err)

	descIdx := strings.Index(out, "description:")
	nameIdx := strings.Index(out, "name:")
	require.NotEqual(t, -1, descIdx)
	require.NotEqual(t, -1, nameIdx)
	assert.Less(t, descIdx, nameIdx, "keys must serialize alphabetically")

	// Same input always serializes identically
	again, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestEncodeEmptyMetaOmitsBlock(t *testing.T) {
	out, err := Encode(&Document{Meta: map[string]any{}, Body: "only the body"})
	require.NoError(t, err)
	assert.Equal(t, "only the body", out)
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"single key", "---\nname: test-agent\n---\nOriginal body"},
		{"multiple sorted keys", "---\ndescription: does things\nname: helper\n---\n# Title\n\nBody text.\n"},
		{"no frontmatter", "Plain content without frontmatter"},
		{"list values", "---\ntools:\n  - bash\n  - grep\n---\nUse the tools."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Decode(tc.text)
			require.NoError(t, err)

			encoded, err := Encode(doc)
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tc.text), strings.TrimSpace(encoded))

			// Re-decoding the encoded form converges
			doc2, err := Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, doc.Meta, doc2.Meta)
			assert.Equal(t, doc.Body, doc2.Body)
		})
	}
}

func TestUpdateMergeSemantics(t *testing.T) {
	doc := &Document{Meta: map[string]any{"name": "test-agent"}}

	doc.Update(map[string]any{"model": "opus"})
	assert.Equal(t, "test-agent", doc.Meta["name"])
	assert.Equal(t, "opus", doc.Meta["model"])

	// nil value deletes the key
	doc.Update(map[string]any{"model": nil})
	assert.NotContains(t, doc.Meta, "model")
	assert.Equal(t, "test-agent", doc.Meta["name"])
}

func TestClone(t *testing.T) {
	doc := &Document{
		Meta: map[string]any{
			"name":     "orig",
			"defaults": map[string]any{"region": "us-east-1"},
		},
		Body: "body",
	}

	clone := doc.Clone()
	clone.Meta["name"] = "changed"
	clone.Meta["defaults"].(map[string]any)["region"] = "eu-west-1"

	assert.Equal(t, "orig", doc.Meta["name"])
	assert.Equal(t, "us-east-1", doc.Meta["defaults"].(map[string]any)["region"])
}
