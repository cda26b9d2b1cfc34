package sim

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/export"
	"github.com/hupe1980/agora/logging"
	"github.com/hupe1980/agora/model"
	"github.com/hupe1980/agora/prompt"
)

// Generic messages shown to observers when a failure must not leak detail.
const (
	genericModelErrorMessage    = "A model call failed. Check the provider configuration and try again."
	genericInternalErrorMessage = "An internal error occurred. The simulation has been aborted."
)

// Runner drives the turn loop of a single run. It is the only goroutine that
// mutates the RunState; everything it learns from the outside world arrives
// through the context (cancellation) and the model channels (fragments).
type Runner struct {
	state   *RunState
	factory model.Factory
	sink    export.Sink
	logger  logging.Logger
	// grace bounds how long the run may go unobserved before the first
	// turn. Zero disables the wait.
	grace time.Duration
}

// Run executes the simulation until a terminal status is reached. It always
// publishes a terminal status event, closes the bus, persists the export
// record and closes the done channel before returning.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.state.done)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("runner panicked", "panic", rec)
			r.state.bus.Publish(core.NewErrorEvent(genericInternalErrorMessage))
			r.finish(core.StatusError)
		}
	}()

	cfg := r.state.Config

	// No tokens are spent on a run nobody is watching. The first turn only
	// begins once an observer attaches; if none arrives within the grace
	// period the run stops before producing anything.
	if r.grace > 0 && !r.awaitObserver(ctx) {
		r.logger.Info("no observer attached, stopping before first turn")
		r.finish(core.StatusStopped)
		return
	}

	r.state.setStatus(core.StatusRunning)
	r.state.bus.Publish(core.NewStatusEvent(core.SignalStarted))

	agentModels, auxModel, err := r.buildModels(cfg)
	if err != nil {
		r.fail(ctx, "", err)
		return
	}

	aux, auxRole, auxActive := cfg.Auxiliary()

	for r.state.Transcript().ActorTurns() < cfg.TurnCap() {
		if ctx.Err() != nil {
			r.finish(core.StatusStopped)
			return
		}

		ordinal := r.state.Transcript().ActorTurns()%len(cfg.Agents) + 1
		agent := cfg.Agents[ordinal-1]

		if err := r.agentTurn(ctx, agent, ordinal, agentModels[ordinal-1]); err != nil {
			r.fail(ctx, agent.Name, err)
			return
		}

		if auxActive && r.auxiliaryDue(aux, auxRole) {
			terminate, err := r.auxiliaryTurn(ctx, aux, auxRole, auxModel, false)
			if err != nil {
				r.fail(ctx, string(auxRole), err)
				return
			}
			if terminate {
				r.finish(core.StatusFinished)
				return
			}
		}
	}

	// Turn cap reached. The enabled auxiliary gets exactly one closing pass
	// before the run finishes, unless cancellation beat it to the punch.
	if auxActive {
		if ctx.Err() != nil {
			r.finish(core.StatusStopped)
			return
		}
		if _, err := r.auxiliaryTurn(ctx, aux, auxRole, auxModel, true); err != nil {
			r.fail(ctx, string(auxRole), err)
			return
		}
	}
	r.finish(core.StatusFinished)
}

// awaitObserver holds the run in its created state until someone attaches to
// the bus. It returns false when the grace period elapses, or the run is
// cancelled, before the first observer arrives.
func (r *Runner) awaitObserver(ctx context.Context) bool {
	if r.state.bus.Count() > 0 {
		return true
	}

	deadline := time.NewTimer(r.grace)
	defer deadline.Stop()
	ticker := time.NewTicker(idlePollInterval(r.grace))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
			if r.state.bus.Count() > 0 {
				return true
			}
		}
	}
}

// auxiliaryDue reports whether the periodic auxiliary turn fires now. The
// moderator counts completed actor turns; the synthesizer counts completed
// rounds, so an incomplete round never triggers it.
func (r *Runner) auxiliaryDue(aux core.AuxiliarySpec, role core.Role) bool {
	transcript := r.state.Transcript()
	freq := aux.EffectiveFrequency()
	if role == core.RoleSynthesizer {
		agents := len(r.state.Config.Agents)
		return transcript.ActorTurns()%agents == 0 && transcript.Rounds(agents)%freq == 0
	}
	return transcript.ActorTurns()%freq == 0
}

// buildModels constructs one model per agent plus the auxiliary model, in
// configured order. Any factory error aborts the run before the first turn.
func (r *Runner) buildModels(cfg core.RunConfig) ([]model.Model, model.Model, error) {
	agentModels := make([]model.Model, len(cfg.Agents))
	for i, a := range cfg.Agents {
		m, err := r.factory.Build(model.ProviderSpec{Provider: defaultProvider(a.Provider), Model: a.Model})
		if err != nil {
			return nil, nil, err
		}
		agentModels[i] = m
	}
	aux, _, ok := cfg.Auxiliary()
	if !ok {
		return agentModels, nil, nil
	}
	auxModel, err := r.factory.Build(model.ProviderSpec{Provider: defaultProvider(aux.Provider), Model: aux.Model})
	if err != nil {
		return nil, nil, err
	}
	return agentModels, auxModel, nil
}

func defaultProvider(provider string) string {
	if provider == "" {
		return "openai"
	}
	return provider
}

// agentTurn runs one counted turn for an agent: prompt, stream, append,
// publish the finalized message.
func (r *Runner) agentTurn(ctx context.Context, agent core.AgentSpec, ordinal int, mdl model.Model) error {
	sp := prompt.Speaker{
		Role:         core.RoleAgent,
		Name:         agent.Name,
		Ordinal:      ordinal,
		Agent:        &agent,
		Instructions: agent.Instructions,
	}
	text, turn, err := r.streamTurn(ctx, sp, agent.Settings, mdl)
	if err != nil {
		return err
	}
	entry := core.TranscriptEntry{
		Role:    core.RoleAgent,
		Name:    agent.Name,
		Turn:    turn,
		Content: text,
		Model:   mdl.Info().Name,
	}
	r.state.appendEntry(entry)
	r.state.bus.Publish(core.NewMessageEvent(entry.Name, entry.Turn, entry.Content, entry.Role, entry.Model))
	return nil
}

// auxiliaryTurn runs one non-counted moderator/synthesizer turn. The raw
// output is probed for the termination directive; the transcript and the
// message event carry the extracted message, never the JSON envelope.
func (r *Runner) auxiliaryTurn(ctx context.Context, aux core.AuxiliarySpec, role core.Role, mdl model.Model, finalCall bool) (bool, error) {
	name := core.ModeratorName
	if role == core.RoleSynthesizer {
		name = core.SynthesizerName
	}
	base := strings.TrimSpace(aux.Instructions)
	if base == "" {
		base = prompt.DefaultAuxiliaryInstructions(role)
	}
	sp := prompt.Speaker{
		Role:         role,
		Name:         name,
		Instructions: prompt.AppendContract(base, role, finalCall),
	}
	raw, turn, err := r.streamTurn(ctx, sp, aux.Settings, mdl)
	if err != nil {
		return false, err
	}
	terminate, message := prompt.ParseTermination(raw)
	entry := core.TranscriptEntry{
		Role:    role,
		Name:    name,
		Turn:    turn,
		Content: message,
		Model:   mdl.Info().Name,
	}
	r.state.appendEntry(entry)
	r.state.bus.Publish(core.NewMessageEvent(entry.Name, entry.Turn, entry.Content, entry.Role, entry.Model))
	return terminate, nil
}

// streamTurn performs the streaming model call for one turn, publishing a
// typing signal followed by a token event per fragment. Cancellation is
// re-checked after every fragment so a stop request interrupts mid-stream.
func (r *Runner) streamTurn(ctx context.Context, sp prompt.Speaker, settings core.GenSettings, mdl model.Model) (string, int, error) {
	transcript := r.state.Transcript()
	turn := transcript.NextTurn()
	instructions, contents := prompt.BuildTurn(r.state.Config, sp, transcript)

	r.state.bus.Publish(core.NewTypingEvent(sp.Name, turn))

	start := time.Now()
	respCh, errCh := mdl.Generate(ctx, model.Request{
		Instructions: instructions,
		Contents:     contents,
		Settings:     settings,
		Stream:       true,
	})

	var builder strings.Builder
	var final string
	for resp := range respCh {
		if resp.Partial {
			builder.WriteString(resp.Text)
			r.state.bus.Publish(core.NewTokenEvent(sp.Name, turn, resp.Text, sp.Role))
		} else if resp.Text != "" {
			final = resp.Text
		}
		if ctx.Err() != nil {
			return "", turn, ctx.Err()
		}
	}
	if err := <-errCh; err != nil {
		return "", turn, err
	}
	if ctx.Err() != nil {
		return "", turn, ctx.Err()
	}
	if final == "" {
		final = builder.String()
	}
	r.logger.Debug("turn completed",
		"speaker", sp.Name, "turn", turn,
		"model", mdl.Info().Name, "duration", time.Since(start))
	return prompt.StripLeadingName(strings.TrimSpace(final), sp.Name), turn, nil
}

// fail classifies a turn failure. Cancellation is not an error; safe errors
// are shown verbatim; everything else is logged with diagnostics and
// surfaced generically.
func (r *Runner) fail(ctx context.Context, speaker string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		r.finish(core.StatusStopped)
		return
	}
	if core.IsSafe(err) {
		r.state.bus.Publish(core.NewErrorEvent(err.Error()))
	} else {
		r.logger.Error("generation failed", "speaker", speaker, "error", err)
		r.state.bus.Publish(core.NewErrorEvent(genericModelErrorMessage))
	}
	r.finish(core.StatusError)
}

// finish seals the run: terminal status event, bus closed so observer
// channels drain and end, transcript persisted.
func (r *Runner) finish(status core.Status) {
	status = r.state.complete(status)
	r.state.bus.Publish(core.NewStatusEvent(string(status)))
	r.state.bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.sink.Save(ctx, r.state.Record()); err != nil {
		r.logger.Error("failed to persist transcript", "error", err)
	}
}
