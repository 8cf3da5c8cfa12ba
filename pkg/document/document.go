// Package document converts between canonical markdown text and a block
// tree suitable for structured editing. Decoding walks the goldmark AST;
// inline runs are kept as raw markdown segments so the round trip stays
// faithful. Encoding emits deterministic markdown for the same tree.
package document

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/agentpad/agentpad/pkg/codec"
)

// Kind identifies the block type of a Node
type Kind int

const (
	// KindParagraph is a paragraph of inline markdown
	KindParagraph Kind = iota
	// KindHeading is an ATX heading, levels 1-6
	KindHeading
	// KindCodeBlock is a fenced or indented code block
	KindCodeBlock
	// KindList is an ordered or unordered list
	KindList
	// KindListItem is a single list item holding nested blocks
	KindListItem
	// KindBlockquote is a quoted run of blocks
	KindBlockquote
	// KindThematicBreak is a horizontal rule
	KindThematicBreak
	// KindHTMLBlock is a raw HTML block kept verbatim
	KindHTMLBlock
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindCodeBlock:
		return "code_block"
	case KindList:
		return "list"
	case KindListItem:
		return "list_item"
	case KindBlockquote:
		return "blockquote"
	case KindThematicBreak:
		return "thematic_break"
	case KindHTMLBlock:
		return "html_block"
	default:
		return "unknown"
	}
}

// Node is a single block in the tree. Leaf blocks carry their raw inline
// markdown in Text; container blocks carry Children.
type Node struct {
	Kind     Kind
	Level    int     // heading level
	Ordered  bool    // list ordering
	Start    int     // first number of an ordered list
	Marker   byte    // list bullet or ordered-list suffix as parsed
	Info     string  // code fence info string
	Text     string  // raw inline markdown or code content
	Children []*Node // container block children
}

// Tree is the structured state for a markdown document
type Tree struct {
	Blocks []*Node
}

// Decode parses canonical markdown into a block tree
func Decode(markdown string) (*Tree, error) {
	source := []byte(markdown)
	md := goldmark.New()
	root := md.Parser().Parse(gtext.NewReader(source))

	blocks, err := decodeChildren(root, source)
	if err != nil {
		return nil, err
	}
	return &Tree{Blocks: blocks}, nil
}

func decodeChildren(parent ast.Node, source []byte) ([]*Node, error) {
	var blocks []*Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		node, err := decodeBlock(child, source)
		if err != nil {
			return nil, err
		}
		if node != nil {
			blocks = append(blocks, node)
		}
	}
	return blocks, nil
}

func decodeBlock(n ast.Node, source []byte) (*Node, error) {
	switch block := n.(type) {
	case *ast.Heading:
		return &Node{Kind: KindHeading, Level: block.Level, Text: rawLines(n, source)}, nil
	case *ast.Paragraph, *ast.TextBlock:
		return &Node{Kind: KindParagraph, Text: rawLines(n, source)}, nil
	case *ast.FencedCodeBlock:
		info := ""
		if block.Info != nil {
			info = string(block.Info.Segment.Value(source))
		}
		return &Node{Kind: KindCodeBlock, Info: info, Text: codeLines(n, source)}, nil
	case *ast.CodeBlock:
		return &Node{Kind: KindCodeBlock, Text: codeLines(n, source)}, nil
	case *ast.List:
		children, err := decodeChildren(n, source)
		if err != nil {
			return nil, err
		}
		return &Node{
			Kind:     KindList,
			Ordered:  block.IsOrdered(),
			Start:    block.Start,
			Marker:   block.Marker,
			Children: children,
		}, nil
	case *ast.ListItem:
		children, err := decodeChildren(n, source)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindListItem, Children: children}, nil
	case *ast.Blockquote:
		children, err := decodeChildren(n, source)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindBlockquote, Children: children}, nil
	case *ast.ThematicBreak:
		return &Node{Kind: KindThematicBreak}, nil
	case *ast.HTMLBlock:
		text := codeLines(n, source)
		if block.HasClosure() {
			text += string(block.ClosureLine.Value(source))
		}
		return &Node{Kind: KindHTMLBlock, Text: strings.TrimRight(text, "\n")}, nil
	default:
		// Unknown extension blocks are preserved as raw paragraphs
		return &Node{Kind: KindParagraph, Text: rawLines(n, source)}, nil
	}
}

// rawLines joins a block's source lines and trims the trailing newline,
// keeping inline markdown syntax intact
func rawLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// codeLines joins a code block's source lines verbatim, newlines included
func codeLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

// Encode serializes a block tree back to canonical markdown. Blocks are
// separated by blank lines and the output always ends with a newline.
func Encode(tree *Tree) (string, error) {
	if tree == nil {
		return "", codec.EncodeError("nil document tree", nil)
	}

	var rendered []string
	for _, block := range tree.Blocks {
		text, err := encodeBlock(block)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, text)
	}
	if len(rendered) == 0 {
		return "", nil
	}
	return strings.Join(rendered, "\n\n") + "\n", nil
}

func encodeBlock(n *Node) (string, error) {
	if n == nil {
		return "", codec.EncodeError("nil block node", nil)
	}

	switch n.Kind {
	case KindHeading:
		if n.Level < 1 || n.Level > 6 {
			return "", codec.EncodeError("heading level out of range: "+strconv.Itoa(n.Level), nil)
		}
		return strings.Repeat("#", n.Level) + " " + n.Text, nil
	case KindParagraph:
		return n.Text, nil
	case KindCodeBlock:
		fence := "```"
		body := n.Text
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return fence + n.Info + "\n" + body + fence, nil
	case KindList:
		return encodeList(n)
	case KindBlockquote:
		inner, err := encodeBlocks(n.Children)
		if err != nil {
			return "", err
		}
		return prefixLines(inner, "> ", "> "), nil
	case KindThematicBreak:
		return "---", nil
	case KindHTMLBlock:
		return n.Text, nil
	case KindListItem:
		return "", codec.EncodeError("list item outside of a list", nil)
	default:
		return "", codec.EncodeError("unknown block kind", nil)
	}
}

func encodeBlocks(blocks []*Node) (string, error) {
	var rendered []string
	for _, block := range blocks {
		text, err := encodeBlock(block)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, text)
	}
	return strings.Join(rendered, "\n\n"), nil
}

func encodeList(list *Node) (string, error) {
	var items []string
	number := list.Start
	if number == 0 {
		number = 1
	}

	for _, item := range list.Children {
		if item.Kind != KindListItem {
			return "", codec.EncodeError("list child is not a list item", nil)
		}

		var marker string
		if list.Ordered {
			suffix := "."
			if list.Marker == ')' {
				suffix = ")"
			}
			marker = strconv.Itoa(number) + suffix + " "
			number++
		} else {
			bullet := list.Marker
			if bullet == 0 {
				bullet = '-'
			}
			marker = string(bullet) + " "
		}

		inner, err := encodeBlocks(item.Children)
		if err != nil {
			return "", err
		}
		items = append(items, prefixLines(inner, marker, strings.Repeat(" ", len(marker))))
	}
	return strings.Join(items, "\n"), nil
}

// prefixLines prepends first to the first line and rest to every
// subsequent line; blank lines keep the trimmed continuation prefix
func prefixLines(text, first, rest string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		if line == "" {
			lines[i] = strings.TrimRight(prefix, " ")
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// Codec adapts the package functions to the generic codec contract
type Codec struct{}

// Decode implements codec.Codec
func (Codec) Decode(text string) (*Tree, error) {
	return Decode(text)
}

// Encode implements codec.Codec
func (Codec) Encode(tree *Tree) (string, error) {
	return Encode(tree)
}
