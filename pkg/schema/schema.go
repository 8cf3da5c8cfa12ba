// Package schema provides typed views over the frontmatter of the three
// document kinds agentpad edits: skills, agents, and slash commands.
// Metadata arrives as the loosely typed mapping a YAML block decodes to;
// this package turns it into validated structs and exports JSON Schemas
// for host-side form validation.
package schema

import (
	"path"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Kind identifies which document type a workspace path holds
type Kind string

const (
	// KindSkill is a skill packaged as <dir>/SKILL.md
	KindSkill Kind = "skill"
	// KindAgent is an agent definition under agents/
	KindAgent Kind = "agent"
	// KindCommand is a slash command under commands/
	KindCommand Kind = "command"
	// KindUnknown is a document outside the known conventions
	KindUnknown Kind = "unknown"
)

// nameRe matches the naming convention shared by skills, agents, and
// commands: lowercase alphanumerics separated by single hyphens
var nameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// SkillMeta is the frontmatter of a SKILL.md file
type SkillMeta struct {
	Name         string   `json:"name" yaml:"name" mapstructure:"name"`
	Description  string   `json:"description" yaml:"description" mapstructure:"description"`
	Version      string   `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	License      string   `json:"license,omitempty" yaml:"license,omitempty" mapstructure:"license"`
	AllowedTools []string `json:"allowed-tools,omitempty" yaml:"allowed-tools,omitempty" mapstructure:"allowed-tools"`
}

// AgentMeta is the frontmatter of an agent definition file
type AgentMeta struct {
	Name            string   `json:"name" yaml:"name" mapstructure:"name"`
	Description     string   `json:"description" yaml:"description" mapstructure:"description"`
	Model           string   `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	Tools           []string `json:"tools,omitempty" yaml:"tools,omitempty" mapstructure:"tools"`
	DisallowedTools []string `json:"disallowedTools,omitempty" yaml:"disallowedTools,omitempty" mapstructure:"disallowedTools"`
}

// CommandMeta is the frontmatter of a slash command file
type CommandMeta struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description  string   `json:"description" yaml:"description" mapstructure:"description"`
	ArgumentHint string   `json:"argument-hint,omitempty" yaml:"argument-hint,omitempty" mapstructure:"argument-hint"`
	Model        string   `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	AllowedTools []string `json:"allowed-tools,omitempty" yaml:"allowed-tools,omitempty" mapstructure:"allowed-tools"`
}

// decode fills out from a frontmatter mapping, tolerating the scalar
// shapes YAML produces (numbers for version strings and the like)
func decode(meta map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to build metadata decoder")
	}
	if err := dec.Decode(meta); err != nil {
		return errors.Wrap(err, "failed to decode metadata")
	}
	return nil
}

// DecodeSkill converts a frontmatter mapping into skill metadata
func DecodeSkill(meta map[string]any) (*SkillMeta, error) {
	out := &SkillMeta{}
	if err := decode(meta, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeAgent converts a frontmatter mapping into agent metadata
func DecodeAgent(meta map[string]any) (*AgentMeta, error) {
	out := &AgentMeta{}
	if err := decode(meta, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeCommand converts a frontmatter mapping into command metadata
func DecodeCommand(meta map[string]any) (*CommandMeta, error) {
	out := &CommandMeta{}
	if err := decode(meta, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate reports every problem with the skill metadata, not just the first
func (m *SkillMeta) Validate() error {
	var result *multierror.Error
	if m.Name == "" {
		result = multierror.Append(result, errors.New("name is required"))
	} else if !nameRe.MatchString(m.Name) {
		result = multierror.Append(result, errors.Errorf("invalid name '%s': use lowercase letters, digits, and hyphens", m.Name))
	}
	if m.Description == "" {
		result = multierror.Append(result, errors.New("description is required"))
	}
	return result.ErrorOrNil()
}

// Validate reports every problem with the agent metadata
func (m *AgentMeta) Validate() error {
	var result *multierror.Error
	if m.Name == "" {
		result = multierror.Append(result, errors.New("name is required"))
	} else if !nameRe.MatchString(m.Name) {
		result = multierror.Append(result, errors.Errorf("invalid name '%s': use lowercase letters, digits, and hyphens", m.Name))
	}
	if m.Description == "" {
		result = multierror.Append(result, errors.New("description is required"))
	}
	if len(m.Tools) > 0 && len(m.DisallowedTools) > 0 {
		result = multierror.Append(result, errors.New("tools and disallowedTools are mutually exclusive"))
	}
	return result.ErrorOrNil()
}

// Validate reports every problem with the command metadata
func (m *CommandMeta) Validate() error {
	var result *multierror.Error
	if m.Name != "" && !nameRe.MatchString(m.Name) {
		result = multierror.Append(result, errors.Errorf("invalid name '%s': use lowercase letters, digits, and hyphens", m.Name))
	}
	if m.Description == "" {
		result = multierror.Append(result, errors.New("description is required"))
	}
	return result.ErrorOrNil()
}

// ValidateMeta decodes and validates a frontmatter mapping for the given
// document kind
func ValidateMeta(kind Kind, meta map[string]any) error {
	switch kind {
	case KindSkill:
		m, err := DecodeSkill(meta)
		if err != nil {
			return err
		}
		return m.Validate()
	case KindAgent:
		m, err := DecodeAgent(meta)
		if err != nil {
			return err
		}
		return m.Validate()
	case KindCommand:
		m, err := DecodeCommand(meta)
		if err != nil {
			return err
		}
		return m.Validate()
	default:
		return errors.Errorf("unknown document kind '%s'", kind)
	}
}

// JSONSchema returns the JSON Schema for a document kind's frontmatter,
// for host-side form validation
func JSONSchema(kind Kind) (*jsonschema.Schema, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	switch kind {
	case KindSkill:
		return reflector.Reflect(&SkillMeta{}), nil
	case KindAgent:
		return reflector.Reflect(&AgentMeta{}), nil
	case KindCommand:
		return reflector.Reflect(&CommandMeta{}), nil
	default:
		return nil, errors.Errorf("unknown document kind '%s'", kind)
	}
}

// KindForPath infers the document kind from a workspace-relative path
// following the conventional layout: skills/<name>/SKILL.md,
// agents/<name>.md, commands/<name>.md
func KindForPath(rel string) Kind {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))

	switch {
	case strings.HasPrefix(rel, "skills/") && path.Base(rel) == "SKILL.md":
		return KindSkill
	case strings.HasPrefix(rel, "agents/") && strings.HasSuffix(rel, ".md"):
		return KindAgent
	case strings.HasPrefix(rel, "commands/") && strings.HasSuffix(rel, ".md"):
		return KindCommand
	default:
		return KindUnknown
	}
}
