package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBlocks(t *testing.T) {
	markdown := `# Title

A paragraph with *emphasis* and [a link](https://example.com).

- first
- second

> quoted text

` + "```go\nfmt.Println(\"hi\")\n```\n"

	tree, err := Decode(markdown)
	require.NoError(t, err)
	require.Len(t, tree.Blocks, 5)

	heading := tree.Blocks[0]
	assert.Equal(t, KindHeading, heading.Kind)
	assert.Equal(t, 1, heading.Level)
	assert.Equal(t, "Title", heading.Text)

	para := tree.Blocks[1]
	assert.Equal(t, KindParagraph, para.Kind)
	assert.Equal(t, "A paragraph with *emphasis* and [a link](https://example.com).", para.Text)

	list := tree.Blocks[2]
	assert.Equal(t, KindList, list.Kind)
	assert.False(t, list.Ordered)
	require.Len(t, list.Children, 2)
	assert.Equal(t, KindListItem, list.Children[0].Kind)
	assert.Equal(t, "first", list.Children[0].Children[0].Text)

	quote := tree.Blocks[3]
	assert.Equal(t, KindBlockquote, quote.Kind)
	require.Len(t, quote.Children, 1)
	assert.Equal(t, "quoted text", quote.Children[0].Text)

	code := tree.Blocks[4]
	assert.Equal(t, KindCodeBlock, code.Kind)
	assert.Equal(t, "go", code.Info)
	assert.Equal(t, "fmt.Println(\"hi\")\n", code.Text)
}

func TestDecodeOrderedList(t *testing.T) {
	tree, err := Decode("3. third\n4. fourth\n")
	require.NoError(t, err)
	require.Len(t, tree.Blocks, 1)

	list := tree.Blocks[0]
	assert.True(t, list.Ordered)
	assert.Equal(t, 3, list.Start)
	require.Len(t, list.Children, 2)
}

func TestEncodeBlocks(t *testing.T) {
	tree := &Tree{Blocks: []*Node{
		{Kind: KindHeading, Level: 2, Text: "Section"},
		{Kind: KindParagraph, Text: "Some **bold** text."},
		{Kind: KindList, Marker: '-', Children: []*Node{
			{Kind: KindListItem, Children: []*Node{{Kind: KindParagraph, Text: "alpha"}}},
			{Kind: KindListItem, Children: []*Node{{Kind: KindParagraph, Text: "beta"}}},
		}},
		{Kind: KindThematicBreak},
		{Kind: KindCodeBlock, Info: "sh", Text: "echo hi\n"},
	}}

	out, err := Encode(tree)
	require.NoError(t, err)
	assert.Equal(t, "## Section\n\nSome **bold** text.\n\n- alpha\n- beta\n\n---\n\n```sh\necho hi\n```\n", out)
}

func TestEncodeInvalidHeadingLevel(t *testing.T) {
	_, err := Encode(&Tree{Blocks: []*Node{{Kind: KindHeading, Level: 9, Text: "bad"}}})
	require.Error(t, err)
}

func TestEncodeNilTree(t *testing.T) {
	_, err := Encode(nil)
	require.Error(t, err)
}

func TestRoundTripConverges(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"heading and paragraph", "# Title\n\nBody text.\n"},
		{"unordered list", "- one\n- two\n- three\n"},
		{"ordered list", "1. one\n2. two\n"},
		{"blockquote", "> wisdom\n"},
		{"code block", "```go\npackage main\n```\n"},
		{"mixed", "## Usage\n\nRun it:\n\n```sh\nagentpad serve\n```\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := Decode(tc.text)
			require.NoError(t, err)

			once, err := Encode(tree)
			require.NoError(t, err)

			tree2, err := Decode(once)
			require.NoError(t, err)

			twice, err := Encode(tree2)
			require.NoError(t, err)

			// Encoding is a fixed point after one normalization pass
			assert.Equal(t, once, twice)
		})
	}
}

func TestFromHTML(t *testing.T) {
	markdown, err := FromHTML("<h1>Hello</h1><p>Some <strong>bold</strong> text.</p>")
	require.NoError(t, err)
	assert.Contains(t, markdown, "# Hello")
	assert.Contains(t, markdown, "**bold**")

	// Imported HTML feeds the normal decode path
	tree, err := Decode(markdown)
	require.NoError(t, err)
	require.NotEmpty(t, tree.Blocks)
	assert.Equal(t, KindHeading, tree.Blocks[0].Kind)
}
