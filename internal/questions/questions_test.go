package questions

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string)
	errs := make(chan error)
	close(out)
	close(errs)
	return out, errs
}

func (f *fakeLLM) Close() error { return nil }

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestPickReturnsRequestedCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	qs := Pick("Software Engineer", LevelFresher, 5, rng)

	require.Len(t, qs, 5)
	seen := map[string]bool{}
	for i, q := range qs {
		assert.Equal(t, i, q.Index)
		assert.NotEmpty(t, q.Text)
		assert.False(t, seen[q.Text], "duplicate question %q", q.Text)
		seen[q.Text] = true
	}
}

func TestPickCyclesWhenPoolIsSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	qs := Pick("HR", LevelExperienced, 8, rng)
	require.Len(t, qs, 8)
	assert.Equal(t, qs[0].Text, qs[5].Text)
}

func TestNormalizeUnknownValues(t *testing.T) {
	role, level := Normalize("Astronaut", "Wizard")
	assert.Equal(t, DefaultRole, role)
	assert.Equal(t, DefaultLevel, level)

	role, level = Normalize("Data Analyst", LevelExperienced)
	assert.Equal(t, "Data Analyst", role)
	assert.Equal(t, LevelExperienced, level)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "behavioral", Classify("Tell me about a project you led."))
	assert.Equal(t, "technical", Classify("Explain the difference between a stack and a queue."))
	assert.Equal(t, "situational", Classify("Imagine your deploy fails on a Friday evening."))
	assert.Equal(t, "behavioral", Classify("Something without any of the markers."))
}

func TestGeneratorParsesLLMJSON(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: "```json\n" +
		`[{"question":"Explain eventual consistency.","type":"technical"},
		  {"question":"Tell me about a failed launch.","type":"behavioral"}]` +
		"\n```"}, testLog())

	qs := g.Generate(context.Background(), "Software Engineer", LevelExperienced, 2)
	require.Len(t, qs, 2)
	assert.Equal(t, "Explain eventual consistency.", qs[0].Text)
	assert.Equal(t, "technical", qs[0].Category)
	assert.Equal(t, "behavioral", qs[1].Category)
}

func TestGeneratorFallsBackOnLLMError(t *testing.T) {
	g := NewGenerator(&fakeLLM{err: errors.New("quota exceeded")}, testLog())
	qs := g.Generate(context.Background(), "HR", LevelFresher, 5)
	assert.Len(t, qs, 5)
}

func TestGeneratorFallsBackOnBadJSON(t *testing.T) {
	g := NewGenerator(&fakeLLM{response: "Sure! Here are some questions:\n1. What is Go?"}, testLog())
	qs := g.Generate(context.Background(), "Data Analyst", LevelFresher, 3)
	assert.Len(t, qs, 3)
}

func TestGeneratorWithoutLLMUsesBank(t *testing.T) {
	g := NewGenerator(nil, testLog())
	qs := g.Generate(context.Background(), "Software Engineer", LevelFresher, 5)
	assert.Len(t, qs, 5)
}

func TestRolesAndLevels(t *testing.T) {
	assert.Equal(t, []string{"Data Analyst", "HR", "Software Engineer"}, Roles())
	assert.Equal(t, []string{LevelFresher, LevelExperienced}, Levels())
}
