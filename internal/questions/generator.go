package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/llm"
)

// Generator produces interview questions, preferring the LLM and falling
// back to the bank when generation fails or no provider is configured.
type Generator struct {
	llm llm.Provider // nil means bank-only
	log *logrus.Entry
	rng *rand.Rand
}

func NewGenerator(provider llm.Provider, log *logrus.Entry) *Generator {
	return &Generator{
		llm: provider,
		log: log,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns n questions for the role and level. LLM failures are
// logged and absorbed; the caller always gets questions.
func (g *Generator) Generate(ctx context.Context, role, level string, n int) []models.Question {
	role, level = Normalize(role, level)
	if n <= 0 {
		n = 5
	}

	if g.llm != nil {
		if qs, err := g.generateWithLLM(ctx, role, level, n); err != nil {
			g.log.WithError(err).WithFields(logrus.Fields{
				"role":  role,
				"level": level,
			}).Warn("llm question generation failed, using bank")
		} else if len(qs) > 0 {
			return qs
		}
	}
	return Pick(role, level, n, g.rng)
}

type generatedQuestion struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

func (g *Generator) generateWithLLM(ctx context.Context, role, level string, n int) ([]models.Question, error) {
	focus := "foundational knowledge, learning ability, and potential"
	if level == LevelExperienced {
		focus = "experience, leadership, complex problem-solving, and strategic thinking"
	}
	prompt := fmt.Sprintf(`Generate %d interview questions for a %s %s position.

Requirements:
- Questions should be appropriate for %s level candidates
- Mix of behavioral, technical, and situational questions
- Each question should be clear and concise
- Focus on %s

Return ONLY a JSON array where each element is an object with:
- "question": the question text
- "type": "behavioral", "technical", or "situational"`, n, level, role, level, focus)

	raw, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed []generatedQuestion
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse generated questions: %w", err)
	}

	out := make([]models.Question, 0, n)
	for _, q := range parsed {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		category := q.Type
		switch category {
		case "behavioral", "technical", "situational":
		default:
			category = Classify(text)
		}
		out = append(out, models.Question{Index: len(out), Text: text, Category: category})
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// stripCodeFence removes a markdown code fence that LLMs often wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
