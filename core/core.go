package core

import "github.com/google/uuid"

// Mode selects the interaction style of a run. It determines which
// behavioral rules are injected into every speaker's instructions and which
// auxiliary role (if any) may participate.
type Mode string

const (
	// ModeDebate pits agents against each other; an optional moderator
	// summarizes periodically.
	ModeDebate Mode = "debate"
	// ModeCollaboration has agents build on each other's output; an optional
	// synthesizer consolidates after full rounds.
	ModeCollaboration Mode = "collaboration"
	// ModeInteraction is free-form conversation without auxiliary roles.
	ModeInteraction Mode = "interaction"
	// ModeCustom relies entirely on per-agent instructions.
	ModeCustom Mode = "custom"
)

// Valid reports whether m is one of the supported interaction modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDebate, ModeCollaboration, ModeInteraction, ModeCustom:
		return true
	}
	return false
}

// Role identifies the kind of speaker that authored a transcript entry.
type Role string

const (
	// RoleAgent is a configured conversational participant.
	RoleAgent Role = "agent"
	// RoleModerator is the debate-mode auxiliary.
	RoleModerator Role = "moderator"
	// RoleSynthesizer is the collaboration-mode auxiliary.
	RoleSynthesizer Role = "synthesizer"
)

// Display names for the auxiliary roles. Agents carry user-chosen names;
// auxiliaries always speak under these.
const (
	ModeratorName   = "Moderator"
	SynthesizerName = "Synthesizer"
)

// Status is the lifecycle state of a run.
type Status string

const (
	// StatusCreated precedes the runner goroutine picking up the run.
	StatusCreated Status = "created"
	// StatusRunning covers the whole turn loop.
	StatusRunning Status = "running"
	// StatusFinished is the normal terminal state (cap reached or early
	// termination requested by an auxiliary).
	StatusFinished Status = "finished"
	// StatusStopped is the terminal state after cooperative cancellation.
	// Cancellation is not an error.
	StatusStopped Status = "stopped"
	// StatusError is the terminal state after a generation failure.
	StatusError Status = "error"
)

// Terminal reports whether the status permits no further transitions. A run
// whose status is terminal is read-only.
func (s Status) Terminal() bool {
	switch s {
	case StatusFinished, StatusStopped, StatusError:
		return true
	}
	return false
}

// NewID generates a new unique run identifier.
func NewID() string { return uuid.NewString() }
