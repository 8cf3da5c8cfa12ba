// Package frontmatter converts between the canonical text form of a
// document (an optional YAML metadata block delimited by lines containing
// only "---", followed by a markdown body) and its structured form: a
// metadata mapping plus the body text.
//
// Decoding goes through goldmark with the goldmark-meta extension, the
// same path used for SKILL.md and agent definition files. Encoding emits
// metadata keys in sorted order so the output is deterministic and
// diff-stable.
package frontmatter

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"github.com/agentpad/agentpad/pkg/codec"
)

const delimiter = "---"

// Document is the structured state for a frontmatter document
type Document struct {
	Meta map[string]any
	Body string
}

// NewDocument creates an empty document with an initialized metadata map
func NewDocument() *Document {
	return &Document{Meta: map[string]any{}}
}

// Decode parses canonical text into a Document.
//
// Text without a leading delimiter line decodes to an empty metadata map
// and the entire text as body. An empty metadata block decodes to an empty
// map with the delimiter lines stripped from the body. A block that is
// opened but never closed fails with a *codec.Error; no partial result is
// returned.
func Decode(text string) (*Document, error) {
	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[0]) != delimiter {
		return &Document{Meta: map[string]any{}, Body: text}, nil
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			closing = i
			break
		}
	}
	if closing == -1 {
		return nil, codec.DecodeError("metadata block opened but never closed", nil)
	}

	body := strings.TrimLeft(strings.Join(lines[closing+1:], "\n"), "\n")

	if strings.TrimSpace(strings.Join(lines[1:closing], "\n")) == "" {
		return &Document{Meta: map[string]any{}, Body: body}, nil
	}

	metadata, err := decodeMeta(text)
	if err != nil {
		return nil, err
	}

	return &Document{Meta: metadata, Body: body}, nil
}

// decodeMeta runs the text through goldmark with the meta extension and
// returns the normalized metadata mapping
func decodeMeta(text string) (map[string]any, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert([]byte(text), &buf, parser.WithContext(pctx)); err != nil {
		return nil, codec.DecodeError("failed to parse markdown", err)
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, codec.DecodeError("malformed metadata block", err)
	}

	normalized := make(map[string]any, len(metaData))
	for k, v := range metaData {
		normalized[k] = normalizeValue(v)
	}
	return normalized, nil
}

// normalizeValue converts yaml.v2-style nested maps into map[string]any
// so metadata values have a uniform shape regardless of nesting depth
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, nested := range val {
			if key, ok := k.(string); ok {
				m[key] = normalizeValue(nested)
			}
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, nested := range val {
			m[k] = normalizeValue(nested)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = normalizeValue(item)
		}
		return s
	default:
		return v
	}
}

// Encode serializes a Document back to canonical text. Metadata keys are
// emitted in sorted order; a document with no metadata serializes to its
// body alone, without an empty block.
func Encode(doc *Document) (string, error) {
	if doc == nil {
		return "", codec.EncodeError("nil document", nil)
	}
	if len(doc.Meta) == 0 {
		return doc.Body, nil
	}

	keys := make([]string, 0, len(doc.Meta))
	for k := range doc.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		valNode := &yaml.Node{}
		if err := valNode.Encode(doc.Meta[k]); err != nil {
			return "", codec.EncodeError("unserializable metadata value for key "+k, err)
		}
		mapping.Content = append(mapping.Content, keyNode, valNode)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return "", codec.EncodeError("failed to serialize metadata block", err)
	}
	if err := enc.Close(); err != nil {
		return "", codec.EncodeError("failed to finalize metadata block", err)
	}

	var out strings.Builder
	out.WriteString(delimiter)
	out.WriteString("\n")
	out.Write(buf.Bytes())
	out.WriteString(delimiter)
	out.WriteString("\n")
	out.WriteString(doc.Body)
	return out.String(), nil
}

// Update applies a merge patch onto the metadata mapping. Keys absent from
// the patch are preserved; a nil patch value deletes the key.
func (d *Document) Update(patch map[string]any) {
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	for k, v := range patch {
		if v == nil {
			delete(d.Meta, k)
			continue
		}
		d.Meta[k] = normalizeValue(v)
	}
}

// Clone returns a deep copy of the document so callers can prepare a new
// state without mutating the current one
func (d *Document) Clone() *Document {
	clone := &Document{Body: d.Body, Meta: make(map[string]any, len(d.Meta))}
	for k, v := range d.Meta {
		clone.Meta[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, nested := range val {
			m[k] = cloneValue(nested)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	default:
		return v
	}
}

// Codec adapts the package functions to the generic codec contract
type Codec struct{}

// Decode implements codec.Codec
func (Codec) Decode(text string) (*Document, error) {
	return Decode(text)
}

// Encode implements codec.Codec
func (Codec) Encode(doc *Document) (string, error) {
	return Encode(doc)
}
