package server

import (
	"time"

	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/export"
)

// startRequest is the POST /api/simulations body. It mirrors core.RunConfig;
// binding stays permissive here because the registry validates structure and
// bounds and produces the user-facing messages.
type startRequest struct {
	Topic       string             `json:"topic"`
	Mode        core.Mode          `json:"mode"`
	Stage       string             `json:"stage"`
	RoundLimit  int                `json:"round_limit"`
	Agents      []core.AgentSpec   `json:"agents"`
	Moderator   core.AuxiliarySpec `json:"moderator"`
	Synthesizer core.AuxiliarySpec `json:"synthesizer"`
}

// RunConfig converts the request into the domain configuration.
func (r startRequest) RunConfig() core.RunConfig {
	return core.RunConfig{
		Topic:       r.Topic,
		Mode:        r.Mode,
		Stage:       r.Stage,
		RoundLimit:  r.RoundLimit,
		Agents:      r.Agents,
		Moderator:   r.Moderator,
		Synthesizer: r.Synthesizer,
	}
}

// startedResponse is the POST /api/simulations reply.
type startedResponse struct {
	SimulationID string `json:"simulation_id"`
}

// transcriptMessage is one finalized turn in the download payload.
type transcriptMessage struct {
	Role    core.Role `json:"role"`
	Name    string    `json:"name"`
	Turn    int       `json:"turn"`
	Content string    `json:"content"`
	Model   string    `json:"model"`
}

// transcriptResponse is the GET /api/simulations/:id/download payload.
type transcriptResponse struct {
	SimulationID string              `json:"simulation_id"`
	Topic        string              `json:"topic"`
	Mode         core.Mode           `json:"mode"`
	Status       core.Status         `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	CompletedAt  time.Time           `json:"completed_at"`
	Messages     []transcriptMessage `json:"messages"`
}

func newTranscriptResponse(rec export.Record) transcriptResponse {
	messages := make([]transcriptMessage, len(rec.Transcript))
	for i, e := range rec.Transcript {
		messages[i] = transcriptMessage{
			Role:    e.Role,
			Name:    e.Name,
			Turn:    e.Turn,
			Content: e.Content,
			Model:   e.Model,
		}
	}
	return transcriptResponse{
		SimulationID: rec.RunID,
		Topic:        rec.Topic,
		Mode:         rec.Mode,
		Status:       rec.Status,
		CreatedAt:    rec.CreatedAt,
		CompletedAt:  rec.CompletedAt,
		Messages:     messages,
	}
}
