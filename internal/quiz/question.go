package quiz

import (
	"math/rand"
	"strings"

	"github.com/example/wordtrack/pkg/models"
)

// QuestionType represents different types of questions
type QuestionType string

const (
	// MultipleChoice asks to pick the translation among options
	MultipleChoice QuestionType = "multiple_choice"
	// TextInput asks to type the translation
	TextInput QuestionType = "text_input"
)

// Question is a single quiz question about one word
type Question struct {
	Word         models.Word
	Type         QuestionType
	Options      []string // multiple choice only
	CorrectIndex int      // index of the translation in Options
}

// optionCount is the number of choices shown at each difficulty.
// Hard questions are typed instead.
var optionCount = map[Difficulty]int{
	Easy:   3,
	Normal: 4,
}

// NewQuestion builds a question for word at the given difficulty. Wrong
// options are translations of other words from pool, same topic first.
// Without enough distinct translations the question falls back to text input.
func NewQuestion(word models.Word, pool []models.Word, difficulty Difficulty, rnd *rand.Rand) Question {
	q := Question{Word: word, Type: TextInput}
	n, ok := optionCount[difficulty]
	if !ok {
		return q
	}

	distractors := wrongOptions(word, pool, n-1, rnd)
	if len(distractors) < n-1 {
		return q
	}

	options := append(distractors, word.Translation)
	correct := len(options) - 1
	rnd.Shuffle(len(options), func(i, j int) {
		if i == correct {
			correct = j
		} else if j == correct {
			correct = i
		}
		options[i], options[j] = options[j], options[i]
	})

	q.Type = MultipleChoice
	q.Options = options
	q.CorrectIndex = correct
	return q
}

// wrongOptions picks up to count translations other than the word's own
func wrongOptions(word models.Word, pool []models.Word, count int, rnd *rand.Rand) []string {
	var sameTopic, otherTopic []string
	seen := map[string]bool{normalize(word.Translation): true}
	for _, w := range pool {
		key := normalize(w.Translation)
		if w.ID == word.ID || seen[key] {
			continue
		}
		seen[key] = true
		if w.Topic == word.Topic {
			sameTopic = append(sameTopic, w.Translation)
		} else {
			otherTopic = append(otherTopic, w.Translation)
		}
	}
	rnd.Shuffle(len(sameTopic), func(i, j int) { sameTopic[i], sameTopic[j] = sameTopic[j], sameTopic[i] })
	rnd.Shuffle(len(otherTopic), func(i, j int) { otherTopic[i], otherTopic[j] = otherTopic[j], otherTopic[i] })

	options := append(sameTopic, otherTopic...)
	if len(options) > count {
		options = options[:count]
	}
	return options
}

// Check reports whether answer is correct. For multiple choice the answer
// may be the 1-based option number or the option text.
func (q Question) Check(answer string) bool {
	answer = strings.TrimSpace(answer)
	if q.Type == MultipleChoice {
		for i, opt := range q.Options {
			if answer == string(rune('1'+i)) {
				return i == q.CorrectIndex
			}
			if normalize(answer) == normalize(opt) {
				return i == q.CorrectIndex
			}
		}
		return false
	}
	return normalize(answer) == normalize(q.Word.Translation)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
