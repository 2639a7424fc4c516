package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/RawatRahul14/ragpipe/config"
	"github.com/RawatRahul14/ragpipe/conversation"
	"github.com/RawatRahul14/ragpipe/llm"
	"github.com/RawatRahul14/ragpipe/log"
	"github.com/RawatRahul14/ragpipe/prompt"
	"github.com/RawatRahul14/ragpipe/rag"
	"github.com/RawatRahul14/ragpipe/store"
)

// Logical agent names resolved through the model registry.
const (
	agentQuestionRewriter = "question_rewriter"
	agentRetrievalGrader  = "retrieval_grader"
	agentAnswerGeneration = "answer_generation"
)

// Pipeline holds the stage dependencies shared by every invocation. It is
// safe for concurrent use across sessions; callers must serialize queries
// within one session.
type Pipeline struct {
	llm              llm.Client
	prompts          *prompt.Registry
	models           *config.ModelRegistry
	checkpoints      store.CheckpointStore
	gradeConcurrency int
	maxTurns         int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCheckpointStore persists pipeline state per session after each
// completed invocation and restores the conversation window on the next.
func WithCheckpointStore(cs store.CheckpointStore) Option {
	return func(p *Pipeline) { p.checkpoints = cs }
}

// WithGradeConcurrency bounds the number of in-flight grading calls. Values
// below 2 keep grading sequential.
func WithGradeConcurrency(n int) Option {
	return func(p *Pipeline) { p.gradeConcurrency = n }
}

// WithMaxTurns overrides the conversation window capacity.
func WithMaxTurns(n int) Option {
	return func(p *Pipeline) { p.maxTurns = n }
}

// New creates a Pipeline.
func New(client llm.Client, prompts *prompt.Registry, models *config.ModelRegistry, opts ...Option) *Pipeline {
	p := &Pipeline{
		llm:      client,
		prompts:  prompts,
		models:   models,
		maxTurns: conversation.DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// invoke renders a prompt, calls the model mapped to the agent, and decodes
// the structured JSON response into out.
func (p *Pipeline) invoke(ctx context.Context, agent, promptName string, vars map[string]string, out any) error {
	model, err := p.models.AgentModel(agent)
	if err != nil {
		return err
	}
	rendered, err := p.prompts.Render(promptName, vars)
	if err != nil {
		return err
	}

	user := rendered.User
	if rendered.OutputSchema != "" {
		user += "\n\nReturn a JSON object of the form: " + rendered.OutputSchema
	}

	raw, err := p.llm.Complete(ctx, llm.Request{
		Model:       model.Name,
		Temperature: model.Temperature,
		System:      rendered.System,
		User:        user,
	})
	if err != nil {
		return err
	}
	return llm.DecodeJSON(raw, out)
}

// rewrite resets the per-turn fields and produces the standalone form of the
// user's question from the conversation so far.
func (p *Pipeline) rewrite(ctx context.Context, state *State) error {
	state.resetTransients()

	var out queryRewrite
	err := p.invoke(ctx, agentQuestionRewriter, "question_rewriter", map[string]string{
		"conversation":     state.Conversation.Format(),
		"current_question": state.Question,
	}, &out)
	if err != nil {
		return fmt.Errorf("rewrite question: %w", err)
	}
	if strings.TrimSpace(out.RephrasedQuestion) == "" {
		return fmt.Errorf("rewrite question: model returned an empty question")
	}

	state.RewrittenQuestion = out.RephrasedQuestion
	log.Debug("rewrote question %q to %q", state.Question, state.RewrittenQuestion)
	return nil
}

// retrieve replaces the state's document list with the top matches for the
// rewritten question from the session-bound retriever.
func (p *Pipeline) retrieve(ctx context.Context, state *State, retriever rag.Retriever) error {
	docs, err := retriever.Retrieve(ctx, state.RewrittenQuestion)
	if err != nil {
		return fmt.Errorf("retrieve documents: %w", err)
	}
	state.Documents = docs
	log.Debug("retrieved %d documents", len(docs))
	return nil
}

// grade keeps only the documents the grading model marks relevant and sets
// the proceed flag. Input order is preserved; unrecognized scores exclude
// the document.
func (p *Pipeline) grade(ctx context.Context, state *State) error {
	kept, err := p.gradeDocuments(ctx, state.RewrittenQuestion, state.Documents)
	if err != nil {
		return fmt.Errorf("grade documents: %w", err)
	}
	state.Documents = kept
	state.Proceed = len(kept) > 0
	log.Debug("grading kept %d documents, proceed=%v", len(kept), state.Proceed)
	return nil
}

func (p *Pipeline) gradeDocuments(ctx context.Context, question string, docs []rag.Document) ([]rag.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	relevant := make([]bool, len(docs))
	if p.gradeConcurrency > 1 {
		if err := p.gradeConcurrent(ctx, question, docs, relevant); err != nil {
			return nil, err
		}
	} else {
		for i, doc := range docs {
			ok, err := p.gradeOne(ctx, question, doc)
			if err != nil {
				return nil, err
			}
			relevant[i] = ok
		}
	}

	var kept []rag.Document
	for i, doc := range docs {
		if relevant[i] {
			kept = append(kept, doc)
		}
	}
	return kept, nil
}

// gradeConcurrent fans grading calls out under a semaphore. Results land in
// the slot matching the document's input position, so the kept set is
// identical to sequential grading.
func (p *Pipeline) gradeConcurrent(ctx context.Context, question string, docs []rag.Document, relevant []bool) error {
	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, p.gradeConcurrency)
		mu   sync.Mutex
		head error
	)
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc rag.Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ok, err := p.gradeOne(ctx, question, doc)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if head == nil {
					head = err
				}
				return
			}
			relevant[i] = ok
		}(i, doc)
	}
	wg.Wait()
	return head
}

func (p *Pipeline) gradeOne(ctx context.Context, question string, doc rag.Document) (bool, error) {
	var out docGrade
	err := p.invoke(ctx, agentRetrievalGrader, "retrieval_grader", map[string]string{
		"question": question,
		"document": doc.Content,
	}, &out)
	if err != nil {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(out.Score)) == "yes", nil
}

// generate produces the grounded answer and appends the turn to the
// conversation window.
func (p *Pipeline) generate(ctx context.Context, state *State) error {
	contents := make([]string, len(state.Documents))
	for i, doc := range state.Documents {
		contents[i] = doc.Content
	}

	var out answerGeneration
	err := p.invoke(ctx, agentAnswerGeneration, "answer_generation", map[string]string{
		"user_query": state.RewrittenQuestion,
		"documents":  strings.Join(contents, "\n\n"),
	}, &out)
	if err != nil {
		return fmt.Errorf("generate answer: %w", err)
	}

	state.Answer = out.Answer
	state.Conversation = state.Conversation.Append(state.RewrittenQuestion, out.AnswerHistory, p.maxTurns)
	return nil
}

// fallback sets the canned response. No model call.
func (p *Pipeline) fallback(state *State) {
	state.FallbackMessage = FallbackMessage
	state.FallbackUsed = true
}

// finalize makes the answer field the canonical output slot regardless of
// which branch ran.
func (p *Pipeline) finalize(state *State) {
	if state.FallbackUsed {
		state.Answer = state.FallbackMessage
	}
}
