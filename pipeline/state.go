// Package pipeline implements the query-answering workflow: rewrite the
// question with conversation context, retrieve candidate passages, grade
// them for relevance, then either generate a grounded answer or fall back
// to a canned response. The workflow runs as an explicit state machine with
// one conditional branch and per-session checkpointing.
package pipeline

import (
	"github.com/RawatRahul14/ragpipe/conversation"
	"github.com/RawatRahul14/ragpipe/rag"
)

// FallbackMessage is the canned response used when no retrieved document is
// judged relevant.
const FallbackMessage = "I'm sorry, I couldn't find any relevant information to answer your question. Can you please provide more details."

// State is the mutable record threaded through every stage of one query
// invocation. The conversation window is the only field that survives
// across invocations; everything else is reset at the rewrite stage.
type State struct {
	Question          string              `json:"question"`
	RewrittenQuestion string              `json:"rewritten_question,omitempty"`
	Conversation      conversation.Window `json:"conversation,omitempty"`
	Documents         []rag.Document      `json:"documents,omitempty"`
	Proceed           bool                `json:"proceed"`
	FallbackMessage   string              `json:"fallback_message,omitempty"`
	FallbackUsed      bool                `json:"fallback_used"`
	Answer            string              `json:"answer,omitempty"`
}

// resetTransients clears every per-turn derived field so a reused
// conversation window never leaks a prior turn's documents or answer into
// the current invocation.
func (s *State) resetTransients() {
	s.RewrittenQuestion = ""
	s.Documents = nil
	s.Proceed = false
	s.FallbackMessage = ""
	s.FallbackUsed = false
	s.Answer = ""
}

// queryRewrite is the structured output of the question_rewriter model.
type queryRewrite struct {
	RephrasedQuestion string `json:"rephrased_question"`
}

// docGrade is the structured output of the retrieval_grader model.
type docGrade struct {
	Score string `json:"score"`
}

// answerGeneration is the structured output of the answer_generation model.
type answerGeneration struct {
	Answer        string `json:"answer"`
	AnswerHistory string `json:"answer_history"`
}
