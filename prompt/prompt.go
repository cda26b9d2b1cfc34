// Package prompt assembles per-speaker prompts from a run's configuration
// and transcript, and handles the structured termination directive embedded
// in auxiliary output. Everything here is a pure function of its inputs:
// safe to call repeatedly, no side effects, no I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agora/core"
)

// Speaker identifies whose turn is being built.
type Speaker struct {
	Role core.Role
	Name string
	// Ordinal is the agent's 1-based position in the configured order.
	// Zero for auxiliary roles.
	Ordinal int
	// Agent is the speaking agent's spec; nil for auxiliary roles.
	Agent *core.AgentSpec
	// Instructions is the resolved instruction text for this turn. For
	// auxiliaries this already includes the output contract.
	Instructions string
}

// BuildTurn produces the instruction block and the ordered history contents
// for one turn. History alternates between the speaker's own entries
// (assistant role, verbatim) and grouped blocks of everyone else's entries
// (user role). When the transcript is empty a minimal opener is emitted so
// the model has something to respond to.
func BuildTurn(cfg core.RunConfig, sp Speaker, transcript core.Transcript) (string, []core.Content) {
	return buildInstructions(cfg, sp), buildHistory(cfg, sp, transcript)
}

// buildInstructions composes the system block in fixed order: topic, speaker
// identity, other participants, mode rules, persona/custom instructions,
// stage last.
func buildInstructions(cfg core.RunConfig, sp Speaker) string {
	var parts []string

	parts = append(parts, "Topic:\n"+cfg.Topic)
	parts = append(parts, fmt.Sprintf("You are %s.", sp.Name))

	if line := participantsLine(cfg, sp); line != "" {
		parts = append(parts, line)
	}

	if sp.Role == core.RoleAgent && sp.Agent != nil {
		switch cfg.Mode {
		case core.ModeDebate:
			side := "FOR"
			if core.ResolveDebateSide(sp.Agent.DebateSide, sp.Ordinal) == core.SideAgainst {
				side = "AGAINST"
			}
			parts = append(parts, fmt.Sprintf("Your position: argue %s the topic.", side))
		case core.ModeCollaboration:
			if r := strings.TrimSpace(sp.Agent.Responsibility); r != "" {
				parts = append(parts, "Your responsibility: "+r)
			}
		}
		if p := strings.TrimSpace(sp.Agent.Persona); p != "" {
			parts = append(parts, "Persona: "+p)
		}
	}

	if inst := strings.TrimSpace(sp.Instructions); inst != "" {
		parts = append(parts, inst)
	}

	if stage := strings.TrimSpace(cfg.Stage); stage != "" {
		parts = append(parts, "Setting:\n"+stage)
	}

	return strings.Join(parts, "\n\n")
}

// participantsLine lists the other participants (name + role) so the speaker
// knows who else is in the conversation.
func participantsLine(cfg core.RunConfig, sp Speaker) string {
	var others []string
	for _, a := range cfg.Agents {
		if sp.Role == core.RoleAgent && strings.EqualFold(a.Name, sp.Name) {
			continue
		}
		others = append(others, a.Name+" (agent)")
	}
	if aux, role, ok := cfg.Auxiliary(); ok && aux.Enabled {
		name := core.ModeratorName
		if role == core.RoleSynthesizer {
			name = core.SynthesizerName
		}
		if sp.Role != role {
			others = append(others, fmt.Sprintf("%s (%s)", name, role))
		}
	}
	switch len(others) {
	case 0:
		return ""
	case 1:
		if sp.Role == core.RoleAgent {
			return fmt.Sprintf("You are speaking with %s.", others[0])
		}
	}
	if sp.Role == core.RoleAgent {
		return "You are speaking with: " + strings.Join(others, ", ") + "."
	}
	return "Participants are: " + strings.Join(others, ", ") + "."
}

// buildHistory converts the transcript into alternating assistant ("self")
// and grouped user ("other") blocks. With exactly two agents the other
// block omits name prefixes for agent entries; with three or more every
// line is prefixed. Moderator and synthesizer entries are always prefixed
// regardless of agent count.
func buildHistory(cfg core.RunConfig, sp Speaker, transcript core.Transcript) []core.Content {
	var contents []core.Content
	var other []string

	flush := func() {
		if len(other) == 0 {
			return
		}
		contents = append(contents, core.UserContent(strings.TrimSpace(strings.Join(other, "\n"))))
		other = nil
	}

	twoAgents := len(cfg.Agents) == 2

	for _, e := range transcript {
		if e.Role == sp.Role && e.Name == sp.Name {
			flush()
			contents = append(contents, core.AssistantContent(e.Content))
			continue
		}
		if e.Role == core.RoleAgent && twoAgents && sp.Role == core.RoleAgent {
			other = append(other, e.Content)
			continue
		}
		other = append(other, e.Name+": "+e.Content)
	}
	flush()

	if len(contents) == 0 {
		contents = append(contents, core.UserContent("Let's begin."))
	}
	return contents
}
