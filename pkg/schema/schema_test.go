package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSkill(t *testing.T) {
	meta := map[string]any{
		"name":        "code-review",
		"description": "Perform thorough code reviews",
		"version":     1.2, // YAML scalars arrive loosely typed
		"allowed-tools": []any{
			"bash",
			"grep",
		},
	}

	skill, err := DecodeSkill(meta)
	require.NoError(t, err)
	assert.Equal(t, "code-review", skill.Name)
	assert.Equal(t, "Perform thorough code reviews", skill.Description)
	assert.Equal(t, "1.2", skill.Version)
	assert.Equal(t, []string{"bash", "grep"}, skill.AllowedTools)
}

func TestDecodeAgent(t *testing.T) {
	agent, err := DecodeAgent(map[string]any{
		"name":        "reviewer",
		"description": "Code review specialist",
		"model":       "opus",
		"tools":       []any{"Read", "Grep"},
	})
	require.NoError(t, err)
	assert.Equal(t, "reviewer", agent.Name)
	assert.Equal(t, "opus", agent.Model)
	assert.Equal(t, []string{"Read", "Grep"}, agent.Tools)
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand(map[string]any{
		"description":   "Run the test suite",
		"argument-hint": "[test-pattern]",
	})
	require.NoError(t, err)
	assert.Equal(t, "Run the test suite", cmd.Description)
	assert.Equal(t, "[test-pattern]", cmd.ArgumentHint)
}

func TestSkillValidateCollectsAllErrors(t *testing.T) {
	err := (&SkillMeta{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "description is required")
}

func TestSkillValidateNamePattern(t *testing.T) {
	valid := &SkillMeta{Name: "test-skill-2", Description: "d"}
	assert.NoError(t, valid.Validate())

	for _, name := range []string{"Bad Name", "UPPER", "double--hyphen", "-leading", "trailing-"} {
		t.Run(name, func(t *testing.T) {
			m := &SkillMeta{Name: name, Description: "d"}
			assert.Error(t, m.Validate())
		})
	}
}

func TestAgentValidateMutuallyExclusiveTools(t *testing.T) {
	m := &AgentMeta{
		Name:            "reviewer",
		Description:     "d",
		Tools:           []string{"Read"},
		DisallowedTools: []string{"Bash"},
	}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestCommandValidateAllowsEmptyName(t *testing.T) {
	assert.NoError(t, (&CommandMeta{Description: "runs tests"}).Validate())
}

func TestValidateMeta(t *testing.T) {
	err := ValidateMeta(KindSkill, map[string]any{
		"name":        "deploy-helper",
		"description": "Helps with deployments",
	})
	assert.NoError(t, err)

	err = ValidateMeta(KindAgent, map[string]any{})
	assert.Error(t, err)

	err = ValidateMeta(KindUnknown, map[string]any{})
	assert.Error(t, err)
}

func TestJSONSchema(t *testing.T) {
	s, err := JSONSchema(KindSkill)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "description")
	assert.Contains(t, props, "allowed-tools")

	_, err = JSONSchema(KindUnknown)
	assert.Error(t, err)
}

func TestKindForPath(t *testing.T) {
	cases := map[string]Kind{
		"skills/code-review/SKILL.md": KindSkill,
		"agents/reviewer.md":          KindAgent,
		"commands/test.md":            KindCommand,
		"commands/nested/deploy.md":   KindCommand,
		"README.md":                   KindUnknown,
		"skills/code-review/notes.md": KindUnknown,
	}

	for p, want := range cases {
		t.Run(p, func(t *testing.T) {
			assert.Equal(t, want, KindForPath(p))
		})
	}
}
