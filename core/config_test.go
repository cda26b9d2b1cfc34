package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() RunConfig {
	return RunConfig{
		Topic:      "Should cities ban cars?",
		Mode:       ModeDebate,
		RoundLimit: 2,
		Agents: []AgentSpec{
			{Name: "Ada", Model: "gpt-4o-mini", Provider: "openai"},
			{Name: "Bo", Model: "claude-3-5-sonnet-20241022", Provider: "anthropic"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate(DefaultLimits()))
}

func TestValidate_Rejections(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name   string
		mutate func(c *RunConfig)
	}{
		{"empty topic", func(c *RunConfig) { c.Topic = "  " }},
		{"bad mode", func(c *RunConfig) { c.Mode = "argument" }},
		{"zero round limit", func(c *RunConfig) { c.RoundLimit = 0 }},
		{"round limit over ceiling", func(c *RunConfig) { c.RoundLimit = limits.MaxRoundLimit + 1 }},
		{"single agent", func(c *RunConfig) { c.Agents = c.Agents[:1] }},
		{"too many agents", func(c *RunConfig) {
			for i := 0; i < limits.MaxAgents; i++ {
				c.Agents = append(c.Agents, AgentSpec{Name: string(rune('C' + i)), Model: "m", Provider: "openai"})
			}
		}},
		{"duplicate names case-insensitive", func(c *RunConfig) { c.Agents[1].Name = "ada" }},
		{"agent without model", func(c *RunConfig) { c.Agents[0].Model = "" }},
		{"invalid debate side", func(c *RunConfig) { c.Agents[0].DebateSide = "sideways" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate(limits)
			require.Error(t, err)
			assert.True(t, IsSafe(err), "validation errors must be user-presentable")
		})
	}
}

func TestResolveDebateSide(t *testing.T) {
	// Explicit side wins.
	assert.Equal(t, SideAgainst, ResolveDebateSide(SideAgainst, 1))
	assert.Equal(t, SideFor, ResolveDebateSide(SideFor, 2))

	// Auto assignment is a pure function of ordinal position.
	for i := 1; i <= 6; i++ {
		want := SideFor
		if i%2 == 0 {
			want = SideAgainst
		}
		assert.Equal(t, want, ResolveDebateSide(SideAuto, i), "ordinal %d", i)
	}
}

func TestTurnCapAndAuxiliary(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 4, cfg.TurnCap())

	_, _, ok := cfg.Auxiliary()
	assert.False(t, ok, "moderator disabled")

	cfg.Moderator = AuxiliarySpec{Enabled: true, Model: "gpt-4o-mini", Provider: "openai"}
	aux, role, ok := cfg.Auxiliary()
	require.True(t, ok)
	assert.Equal(t, RoleModerator, role)
	assert.Equal(t, 2, aux.EffectiveFrequency())

	// Synthesizer never applies in debate mode.
	cfg.Synthesizer = AuxiliarySpec{Enabled: true, Model: "gpt-4o-mini"}
	_, role, _ = cfg.Auxiliary()
	assert.Equal(t, RoleModerator, role)

	cfg.Mode = ModeCollaboration
	_, role, ok = cfg.Auxiliary()
	require.True(t, ok)
	assert.Equal(t, RoleSynthesizer, role)

	// Enabled without a model is not active.
	cfg.Synthesizer.Model = ""
	_, _, ok = cfg.Auxiliary()
	assert.False(t, ok)
}
