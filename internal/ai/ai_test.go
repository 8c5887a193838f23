package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/wordtrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactGrader(t *testing.T) {
	word := models.Word{Text: "house", Translation: "dom, zdanie"}
	tests := []struct {
		answer string
		want   int
	}{
		{"", 0},
		{"  Dom, zdanie! ", 5},
		{"zdanie", 4},
		{"dom zdanei", 1},
		{"koshka", 1},
	}
	for _, tt := range tests {
		got, err := ExactGrader{}.Grade(context.Background(), word, tt.answer)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "answer %q", tt.answer)
	}

	got, err := ExactGrader{}.Grade(context.Background(), models.Word{Translation: "sobaka"}, "sabaka")
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("abc", "abc"))
	assert.Equal(t, 1, editDistance("abc", "abd"))
	assert.Equal(t, 3, editDistance("", "abc"))
	assert.Equal(t, 3, editDistance("kitten", "sitting"))
}

func newTestOpenAI(t *testing.T, content string) (*OpenAI, *[]string) {
	t.Helper()
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Messages {
			prompts = append(prompts, m.Content)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewOpenAI("test-key", "gpt-4o-mini", server.URL+"/v1")
	require.NoError(t, err)
	return client, &prompts
}

func TestOpenAIGrade(t *testing.T) {
	client, prompts := newTestOpenAI(t, " 4\n")
	got, err := client.Grade(context.Background(), models.Word{Text: "dog", Translation: "sobaka"}, "sabaka")
	require.NoError(t, err)
	assert.Equal(t, 4, got)
	require.Len(t, *prompts, 2)
	assert.Contains(t, (*prompts)[1], "Learner answer: sabaka")

	got, err = client.Grade(context.Background(), models.Word{}, "   ")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestOpenAIGradeRejectsGarbage(t *testing.T) {
	client, _ := newTestOpenAI(t, "excellent")
	_, err := client.Grade(context.Background(), models.Word{Text: "dog"}, "x")
	assert.Error(t, err)
}

func TestOpenAIGenerateExample(t *testing.T) {
	client, _ := newTestOpenAI(t, "  The dog barks.  ")
	got, err := client.GenerateExample(context.Background(), models.Word{Text: "dog", Translation: "sobaka"})
	require.NoError(t, err)
	assert.Equal(t, "The dog barks.", got)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "", "")
	assert.Error(t, err)
}
