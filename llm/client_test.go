package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type rewrite struct {
		RephrasedQuestion string `json:"rephrased_question"`
	}

	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "plain JSON",
			response: `{"rephrased_question": "What is FAISS?"}`,
			want:     "What is FAISS?",
		},
		{
			name:     "json code fence",
			response: "```json\n{\"rephrased_question\": \"What is FAISS?\"}\n```",
			want:     "What is FAISS?",
		},
		{
			name:     "bare code fence",
			response: "```\n{\"rephrased_question\": \"What is FAISS?\"}\n```",
			want:     "What is FAISS?",
		},
		{
			name:     "surrounding whitespace",
			response: "  \n{\"rephrased_question\": \"What is FAISS?\"}\n  ",
			want:     "What is FAISS?",
		},
		{
			name:     "not JSON",
			response: "I cannot answer that.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out rewrite
			err := DecodeJSON(tt.response, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.RephrasedQuestion)
		})
	}
}
