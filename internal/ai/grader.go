package ai

import (
	"context"
	"strings"
	"unicode"

	"github.com/example/wordtrack/pkg/models"
)

// Grader turns a learner's answer into an SM-2 quality score in [0,5]
type Grader interface {
	Grade(ctx context.Context, word models.Word, answer string) (int, error)
}

// ExactGrader compares the answer with the stored translation. A single
// typo is accepted with reduced quality.
type ExactGrader struct{}

// Grade implements Grader
func (ExactGrader) Grade(_ context.Context, word models.Word, answer string) (int, error) {
	got, want := normalizeAnswer(answer), normalizeAnswer(word.Translation)
	switch {
	case got == "":
		return 0, nil
	case got == want:
		return 5, nil
	case editDistance(got, want) == 1:
		return 3, nil
	}
	// any of several comma separated translations counts
	for _, alt := range strings.Split(word.Translation, ",") {
		if normalizeAnswer(alt) == got {
			return 4, nil
		}
	}
	return 1, nil
}

// normalizeAnswer lowercases and drops punctuation and repeated spaces
func normalizeAnswer(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// editDistance is the Levenshtein distance between a and b
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
