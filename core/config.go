package core

import (
	"fmt"
	"strings"
)

// DebateSide is the position an agent argues in debate mode.
type DebateSide string

const (
	// SideFor argues in favor of the topic.
	SideFor DebateSide = "for"
	// SideAgainst argues against the topic.
	SideAgainst DebateSide = "against"
	// SideAuto (the zero value) defers to deterministic assignment by
	// ordinal position.
	SideAuto DebateSide = ""
)

// ResolveDebateSide returns the effective side for an agent. An explicit
// side wins; otherwise assignment alternates by 1-based ordinal position:
// odd ordinals argue for, even ordinals against. The result is a pure
// function of configuration, stable across repeated calls.
func ResolveDebateSide(side DebateSide, ordinal int) DebateSide {
	if side == SideFor || side == SideAgainst {
		return side
	}
	if ordinal%2 == 1 {
		return SideFor
	}
	return SideAgainst
}

// GenSettings carries optional generation parameters forwarded to the
// provider adapter. Zero values mean "use the provider default".
// ContextSize is forwarded as num_ctx on the ollama path; the hosted
// providers have no such knob and ignore it.
type GenSettings struct {
	Temperature *float64 `json:"temperature,omitempty"` // 0.0..2.0
	MaxTokens   int64    `json:"max_tokens,omitempty"`
	ContextSize int64    `json:"context_size,omitempty"`
}

// AgentSpec configures one conversational participant. The agent's stable
// identity is its 1-based position in RunConfig.Agents.
type AgentSpec struct {
	Name           string      `json:"name"`
	Model          string      `json:"model"`
	Provider       string      `json:"provider"`
	Persona        string      `json:"persona,omitempty"`
	Instructions   string      `json:"instructions,omitempty"`
	DebateSide     DebateSide  `json:"debate_side,omitempty"`
	Responsibility string      `json:"responsibility,omitempty"`
	Settings       GenSettings `json:"settings,omitempty"`
}

// AuxiliarySpec configures a periodic non-counted participant: the moderator
// (debate mode) or synthesizer (collaboration mode).
type AuxiliarySpec struct {
	Enabled      bool        `json:"enabled"`
	Model        string      `json:"model,omitempty"`
	Provider     string      `json:"provider,omitempty"`
	Instructions string      `json:"instructions,omitempty"`
	Frequency    int         `json:"frequency,omitempty"`
	Settings     GenSettings `json:"settings,omitempty"`
}

// Active reports whether the auxiliary should participate at all: it must be
// enabled and carry a model identifier.
func (a AuxiliarySpec) Active() bool { return a.Enabled && a.Model != "" }

// EffectiveFrequency returns the trigger frequency, defaulting to 2 when
// unset (matching the request default).
func (a AuxiliarySpec) EffectiveFrequency() int {
	if a.Frequency < 1 {
		return 2
	}
	return a.Frequency
}

// RunConfig is the immutable configuration of a run.
type RunConfig struct {
	Topic       string        `json:"topic"`
	Mode        Mode          `json:"mode"`
	Stage       string        `json:"stage,omitempty"`
	RoundLimit  int           `json:"round_limit"`
	Agents      []AgentSpec   `json:"agents"`
	Moderator   AuxiliarySpec `json:"moderator,omitempty"`
	Synthesizer AuxiliarySpec `json:"synthesizer,omitempty"`
}

// TurnCap returns the configured cap on agent turns: round_limit × |agents|.
// Auxiliary turns do not count against it.
func (c RunConfig) TurnCap() int { return c.RoundLimit * len(c.Agents) }

// Auxiliary returns the auxiliary spec applicable to the run's mode along
// with its role, or ok=false when the mode has none enabled.
func (c RunConfig) Auxiliary() (AuxiliarySpec, Role, bool) {
	switch c.Mode {
	case ModeDebate:
		if c.Moderator.Active() {
			return c.Moderator, RoleModerator, true
		}
	case ModeCollaboration:
		if c.Synthesizer.Active() {
			return c.Synthesizer, RoleSynthesizer, true
		}
	}
	return AuxiliarySpec{}, "", false
}

// Limits bounds run configurations at validation time. The zero value is
// not useful; use DefaultLimits as a starting point.
type Limits struct {
	MaxAgents         int
	MaxRoundLimit     int
	MaxTopicChars     int
	MaxStageChars     int
	MaxInstructionLen int
	MaxAuxFrequency   int
}

// DefaultLimits mirrors the server-side bounds of the original deployment.
func DefaultLimits() Limits {
	return Limits{
		MaxAgents:         4,
		MaxRoundLimit:     40,
		MaxTopicChars:     4000,
		MaxStageChars:     4000,
		MaxInstructionLen: 8000,
		MaxAuxFrequency:   20,
	}
}

// Validate checks the structural invariants of a run configuration against
// the given limits. It returns a SafeError describing the first violation
// found, suitable for returning to the caller verbatim.
func (c RunConfig) Validate(limits Limits) error {
	if strings.TrimSpace(c.Topic) == "" {
		return NewSafeError("topic must not be empty")
	}
	if len(c.Topic) > limits.MaxTopicChars {
		return NewSafeError("topic is too long")
	}
	if len(c.Stage) > limits.MaxStageChars {
		return NewSafeError("stage text is too long")
	}
	if !c.Mode.Valid() {
		return NewSafeError(fmt.Sprintf("unsupported mode: %s", c.Mode))
	}
	if c.RoundLimit < 1 {
		return NewSafeError("round_limit must be at least 1")
	}
	if c.RoundLimit > limits.MaxRoundLimit {
		return NewSafeError("round_limit exceeds server maximum")
	}
	if len(c.Agents) < 2 {
		return NewSafeError("at least two agents are required")
	}
	if len(c.Agents) > limits.MaxAgents {
		return NewSafeError("too many agents for this server")
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return NewSafeError("agent names must not be empty")
		}
		if a.Model == "" {
			return NewSafeError(fmt.Sprintf("agent %q has no model", name))
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return NewSafeError("agent names must be unique")
		}
		seen[key] = struct{}{}
		if len(a.Instructions) > limits.MaxInstructionLen {
			return NewSafeError(fmt.Sprintf("instructions too long for agent %q", name))
		}
		if a.DebateSide != SideAuto && a.DebateSide != SideFor && a.DebateSide != SideAgainst {
			return NewSafeError(fmt.Sprintf("invalid debate side for agent %q", name))
		}
	}
	for _, aux := range []struct {
		label string
		spec  AuxiliarySpec
	}{
		{"moderator", c.Moderator},
		{"synthesizer", c.Synthesizer},
	} {
		if !aux.spec.Enabled {
			continue
		}
		if len(aux.spec.Instructions) > limits.MaxInstructionLen {
			return NewSafeError(fmt.Sprintf("instructions too long for %s", aux.label))
		}
		if aux.spec.Frequency > limits.MaxAuxFrequency {
			return NewSafeError(fmt.Sprintf("%s frequency exceeds server maximum", aux.label))
		}
	}
	return nil
}
