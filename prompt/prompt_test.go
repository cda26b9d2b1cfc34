package prompt

import (
	"strings"
	"testing"

	"github.com/hupe1980/agora/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debateConfig(agents ...core.AgentSpec) core.RunConfig {
	return core.RunConfig{
		Topic:      "Should cities ban cars?",
		Mode:       core.ModeDebate,
		Stage:      "A town hall meeting.",
		RoundLimit: 2,
		Agents:     agents,
	}
}

func agentSpeaker(cfg core.RunConfig, ordinal int) Speaker {
	a := cfg.Agents[ordinal-1]
	return Speaker{
		Role:         core.RoleAgent,
		Name:         a.Name,
		Ordinal:      ordinal,
		Agent:        &cfg.Agents[ordinal-1],
		Instructions: a.Instructions,
	}
}

func TestBuildInstructions_FixedOrder(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m", Persona: "a pragmatic urbanist", Instructions: "Keep it short."},
		core.AgentSpec{Name: "Bo", Model: "m"},
	)

	instructions, _ := BuildTurn(cfg, agentSpeaker(cfg, 1), nil)

	wantOrder := []string{
		"Topic:\nShould cities ban cars?",
		"You are Ada.",
		"You are speaking with Bo (agent).",
		"Your position: argue FOR the topic.",
		"Persona: a pragmatic urbanist",
		"Keep it short.",
		"Setting:\nA town hall meeting.",
	}
	last := -1
	for _, chunk := range wantOrder {
		idx := strings.Index(instructions, chunk)
		require.GreaterOrEqual(t, idx, 0, "missing %q", chunk)
		assert.Greater(t, idx, last, "%q out of order", chunk)
		last = idx
	}
}

func TestBuildInstructions_DebateSides(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m"},
		core.AgentSpec{Name: "Bo", Model: "m"},
		core.AgentSpec{Name: "Cy", Model: "m"},
	)

	for i, want := range []string{"argue FOR", "argue AGAINST", "argue FOR"} {
		instructions, _ := BuildTurn(cfg, agentSpeaker(cfg, i+1), nil)
		assert.Contains(t, instructions, want, "ordinal %d", i+1)
	}

	// Explicit side overrides auto assignment.
	cfg.Agents[0].DebateSide = core.SideAgainst
	instructions, _ := BuildTurn(cfg, agentSpeaker(cfg, 1), nil)
	assert.Contains(t, instructions, "argue AGAINST")
}

func TestBuildInstructions_CollaborationResponsibility(t *testing.T) {
	cfg := core.RunConfig{
		Topic:      "Design a plan",
		Mode:       core.ModeCollaboration,
		RoundLimit: 1,
		Agents: []core.AgentSpec{
			{Name: "Ada", Model: "m", Responsibility: "risk analysis"},
			{Name: "Bo", Model: "m"},
		},
	}
	instructions, _ := BuildTurn(cfg, agentSpeaker(cfg, 1), nil)
	assert.Contains(t, instructions, "Your responsibility: risk analysis")

	instructions, _ = BuildTurn(cfg, agentSpeaker(cfg, 2), nil)
	assert.NotContains(t, instructions, "Your responsibility")
}

func TestBuildInstructions_AuxiliarySpeaker(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m"},
		core.AgentSpec{Name: "Bo", Model: "m"},
	)
	cfg.Moderator = core.AuxiliarySpec{Enabled: true, Model: "m"}

	sp := Speaker{Role: core.RoleModerator, Name: core.ModeratorName, Instructions: "Summarize."}
	instructions, _ := BuildTurn(cfg, sp, nil)
	assert.Contains(t, instructions, "You are Moderator.")
	assert.Contains(t, instructions, "Participants are: Ada (agent), Bo (agent).")
	assert.NotContains(t, instructions, "Your position")
}

func TestBuildHistory_EmptyTranscriptEmitsOpener(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m"},
		core.AgentSpec{Name: "Bo", Model: "m"},
	)
	_, contents := BuildTurn(cfg, agentSpeaker(cfg, 1), nil)
	require.Len(t, contents, 1)
	assert.Equal(t, core.UserContent("Let's begin."), contents[0])
}

func TestBuildHistory_TwoAgentsOmitPrefixes(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m"},
		core.AgentSpec{Name: "Bo", Model: "m"},
	)
	transcript := core.Transcript{
		{Role: core.RoleAgent, Name: "Ada", Turn: 1, Content: "Cars are loud."},
		{Role: core.RoleAgent, Name: "Bo", Turn: 2, Content: "Cars are useful."},
		{Role: core.RoleModerator, Name: core.ModeratorName, Turn: 3, Content: "Both made points."},
	}

	_, contents := BuildTurn(cfg, agentSpeaker(cfg, 1), transcript)
	require.Len(t, contents, 2)
	assert.Equal(t, "assistant", contents[0].Role)
	assert.Equal(t, "Cars are loud.", contents[0].Text)
	assert.Equal(t, "user", contents[1].Role)
	// Agent entry unprefixed; moderator entry always prefixed.
	assert.Equal(t, "Cars are useful.\nModerator: Both made points.", contents[1].Text)
}

func TestBuildHistory_ThreeAgentsPrefixEveryLine(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m"},
		core.AgentSpec{Name: "Bo", Model: "m"},
		core.AgentSpec{Name: "Cy", Model: "m"},
	)
	transcript := core.Transcript{
		{Role: core.RoleAgent, Name: "Ada", Turn: 1, Content: "First."},
		{Role: core.RoleAgent, Name: "Bo", Turn: 2, Content: "Second."},
		{Role: core.RoleAgent, Name: "Cy", Turn: 3, Content: "Third."},
	}

	_, contents := BuildTurn(cfg, agentSpeaker(cfg, 2), transcript)
	require.Len(t, contents, 3)
	assert.Equal(t, "Ada: First.", contents[0].Text)
	assert.Equal(t, "Second.", contents[1].Text)
	assert.Equal(t, contents[1].Role, "assistant")
	assert.Equal(t, "Cy: Third.", contents[2].Text)
}

func TestBuildHistory_GroupsConsecutiveOthers(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m"},
		core.AgentSpec{Name: "Bo", Model: "m"},
		core.AgentSpec{Name: "Cy", Model: "m"},
	)
	transcript := core.Transcript{
		{Role: core.RoleAgent, Name: "Bo", Turn: 1, Content: "One."},
		{Role: core.RoleAgent, Name: "Cy", Turn: 2, Content: "Two."},
		{Role: core.RoleAgent, Name: "Ada", Turn: 3, Content: "Mine."},
		{Role: core.RoleAgent, Name: "Bo", Turn: 4, Content: "Three."},
	}

	_, contents := BuildTurn(cfg, agentSpeaker(cfg, 1), transcript)
	require.Len(t, contents, 3)
	assert.Equal(t, "Bo: One.\nCy: Two.", contents[0].Text)
	assert.Equal(t, "Mine.", contents[1].Text)
	assert.Equal(t, "Bo: Three.", contents[2].Text)
}

func TestBuildTurn_Idempotent(t *testing.T) {
	cfg := debateConfig(
		core.AgentSpec{Name: "Ada", Model: "m"},
		core.AgentSpec{Name: "Bo", Model: "m"},
	)
	transcript := core.Transcript{
		{Role: core.RoleAgent, Name: "Ada", Turn: 1, Content: "Hello."},
	}
	i1, c1 := BuildTurn(cfg, agentSpeaker(cfg, 2), transcript)
	i2, c2 := BuildTurn(cfg, agentSpeaker(cfg, 2), transcript)
	assert.Equal(t, i1, i2)
	assert.Equal(t, c1, c2)
}
