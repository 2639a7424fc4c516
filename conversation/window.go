// Package conversation maintains the bounded question/answer history a
// session carries between queries.
package conversation

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxTurns is the number of turns a window keeps before evicting the oldest.
const DefaultMaxTurns = 3

// Turn is a single question/answer exchange.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Window holds the most recent turns keyed 1..len in chronological order.
// Keys are rebuilt on every update so they always form a contiguous sequence
// starting at 1, with the oldest surviving turn at key 1.
type Window map[int]Turn

// Append adds a new turn, evicts the oldest when the window would exceed
// maxTurns, and returns the renumbered window. A maxTurns <= 0 falls back to
// DefaultMaxTurns. The receiver is not mutated.
func (w Window) Append(question, answer string, maxTurns int) Window {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	turns := w.ordered()
	turns = append(turns, Turn{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	})

	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	updated := make(Window, len(turns))
	for i, turn := range turns {
		updated[i+1] = turn
	}
	return updated
}

// Format renders the window as a plain-text transcript for prompt inclusion:
//
//	User: What is FAISS?
//	Agent: A vector index used for similarity search.
//
// Returns the empty string for an empty window.
func (w Window) Format() string {
	if len(w) == 0 {
		return ""
	}

	turns := w.ordered()
	parts := make([]string, len(turns))
	for i, turn := range turns {
		parts[i] = fmt.Sprintf("User: %s\nAgent: %s", turn.Question, turn.Answer)
	}
	return strings.Join(parts, "\n\n")
}

// ordered returns the turns sorted by key, oldest first.
func (w Window) ordered() []Turn {
	keys := make([]int, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	turns := make([]Turn, 0, len(keys))
	for _, k := range keys {
		turns = append(turns, w[k])
	}
	return turns
}
