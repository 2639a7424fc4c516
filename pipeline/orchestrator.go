package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RawatRahul14/ragpipe/log"
	"github.com/RawatRahul14/ragpipe/rag"
	"github.com/RawatRahul14/ragpipe/store"
)

// Config is the read-only per-invocation configuration. Retriever is bound
// to the session by the upload path; nodes receive it through here rather
// than through any process-wide lookup.
type Config struct {
	SessionID string
	Retriever rag.Retriever
}

// step enumerates the pipeline states.
type step int

const (
	stepRewrite step = iota
	stepRetrieve
	stepGrade
	stepGenerate
	stepFallback
	stepFinalize
	stepEnd
)

func (s step) String() string {
	switch s {
	case stepRewrite:
		return "rewrite"
	case stepRetrieve:
		return "retrieve"
	case stepGrade:
		return "grade"
	case stepGenerate:
		return "generate"
	case stepFallback:
		return "fallback"
	case stepFinalize:
		return "finalize"
	case stepEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Run executes one query invocation to completion and returns the final
// state. The conversation window is restored from the session's latest
// checkpoint before the run and the completed state is checkpointed after.
// A failing stage aborts the invocation without persisting anything.
func (p *Pipeline) Run(ctx context.Context, cfg Config, question string) (*State, error) {
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("no retriever bound for session %s", cfg.SessionID)
	}

	state := &State{Question: question}
	version, err := p.restore(ctx, cfg.SessionID, state)
	if err != nil {
		return nil, err
	}

	current := stepRewrite
	for current != stepEnd {
		log.Debug("session %s: entering %s", cfg.SessionID, current)
		next, err := p.transition(ctx, cfg, current, state)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", current, err)
		}
		current = next
	}

	if err := p.persist(ctx, cfg.SessionID, state, version+1); err != nil {
		return nil, err
	}
	return state, nil
}

// transition runs one stage and returns the next step. The grade stage is
// the only branch point.
func (p *Pipeline) transition(ctx context.Context, cfg Config, current step, state *State) (step, error) {
	switch current {
	case stepRewrite:
		return stepRetrieve, p.rewrite(ctx, state)
	case stepRetrieve:
		return stepGrade, p.retrieve(ctx, state, cfg.Retriever)
	case stepGrade:
		if err := p.grade(ctx, state); err != nil {
			return stepEnd, err
		}
		switch Decide(state.Proceed) {
		case RouteGenerateAnswer:
			return stepGenerate, nil
		default:
			return stepFallback, nil
		}
	case stepGenerate:
		return stepFinalize, p.generate(ctx, state)
	case stepFallback:
		p.fallback(state)
		return stepFinalize, nil
	case stepFinalize:
		p.finalize(state)
		return stepEnd, nil
	default:
		return stepEnd, fmt.Errorf("unexpected state %s", current)
	}
}

// restore hydrates the conversation window from the session's latest
// checkpoint. It returns the checkpoint's version, or zero when the session
// has no history.
func (p *Pipeline) restore(ctx context.Context, sessionID string, state *State) (int, error) {
	if p.checkpoints == nil {
		return 0, nil
	}

	cp, err := p.checkpoints.Latest(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("restore checkpoint: %w", err)
	}

	// Checkpoint state round-trips through JSON, so it arrives as a
	// generic map. Remarshal into the typed state to pull the window out.
	raw, err := json.Marshal(cp.State)
	if err != nil {
		return 0, fmt.Errorf("restore checkpoint: %w", err)
	}
	var saved State
	if err := json.Unmarshal(raw, &saved); err != nil {
		return 0, fmt.Errorf("restore checkpoint: %w", err)
	}

	state.Conversation = saved.Conversation
	log.Debug("session %s: restored %d conversation turns from checkpoint %s",
		sessionID, len(saved.Conversation), cp.ID)
	return cp.Version, nil
}

// persist saves the completed state as the session's next checkpoint.
func (p *Pipeline) persist(ctx context.Context, sessionID string, state *State, version int) error {
	if p.checkpoints == nil {
		return nil
	}

	cp := &store.Checkpoint{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Node:      stepFinalize.String(),
		State:     state,
		Metadata:  map[string]any{"fallback_used": state.FallbackUsed},
		Timestamp: time.Now().UTC(),
		Version:   version,
	}
	if err := p.checkpoints.Save(ctx, cp); err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	return nil
}
