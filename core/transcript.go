package core

// TranscriptEntry is one completed utterance. Turn numbers are monotonic
// across the whole run, auxiliary turns included.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Name    string `json:"name"`
	Turn    int    `json:"turn"`
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Transcript is the append-only record of a run and the only authoritative
// history source. Counters over it are always derived, never stored.
type Transcript []TranscriptEntry

// NextTurn returns the ordinal the next appended entry will carry.
func (t Transcript) NextTurn() int { return len(t) + 1 }

// ActorTurns counts completed agent turns; auxiliary turns are excluded.
func (t Transcript) ActorTurns() int {
	n := 0
	for _, e := range t {
		if e.Role == RoleAgent {
			n++
		}
	}
	return n
}

// Rounds returns the number of completed rounds for a run with agentCount
// agents, i.e. full passes in which every agent has spoken once. A partial
// pass does not count.
func (t Transcript) Rounds(agentCount int) int {
	if agentCount <= 0 {
		return 0
	}
	return t.ActorTurns() / agentCount
}
