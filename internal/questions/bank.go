// Package questions serves interview questions, generated by the LLM when
// one is configured and drawn from the built-in bank otherwise.
package questions

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
)

// Defaults applied when a request names an unknown role or level.
const (
	DefaultRole  = "Software Engineer"
	DefaultLevel = "Fresher"
)

// Experience levels.
const (
	LevelFresher     = "Fresher"
	LevelExperienced = "Experienced"
)

// bank holds the curated fallback questions per role and level.
var bank = map[string]map[string][]string{
	"Software Engineer": {
		LevelFresher: {
			"Tell me about yourself and why you're interested in software engineering.",
			"What programming languages are you most comfortable with and why?",
			"Describe a challenging project you worked on during your studies.",
			"How do you approach debugging when your code isn't working?",
			"What do you know about our company and why do you want to work here?",
			"Explain the difference between object-oriented and functional programming.",
			"How do you stay updated with new programming technologies?",
			"Describe a time when you had to learn a new technology quickly.",
			"What is your favorite programming language and why?",
			"How do you handle version control in your projects?",
			"What are some best practices for writing clean code?",
			"Describe your experience with databases and SQL.",
			"How would you explain APIs to a non-technical person?",
			"What motivates you to pursue a career in software development?",
			"Describe a time when you collaborated on a coding project.",
		},
		LevelExperienced: {
			"Walk me through your experience with software architecture and design patterns.",
			"How do you handle code reviews and ensure code quality in a team environment?",
			"Describe a time when you had to optimize application performance.",
			"How do you stay updated with new technologies and programming trends?",
			"Tell me about a challenging technical problem you solved recently.",
		},
	},
	"HR": {
		LevelFresher: {
			"Why are you interested in pursuing a career in Human Resources?",
			"How would you handle a conflict between two team members?",
			"What do you think are the most important qualities for an HR professional?",
			"Describe a time when you had to communicate difficult information to someone.",
			"How would you approach recruiting candidates for a technical role?",
		},
		LevelExperienced: {
			"How do you develop and implement HR policies that align with business objectives?",
			"Describe your experience with performance management and employee development.",
			"How do you handle sensitive employee relations issues?",
			"What strategies do you use for talent retention and employee engagement?",
			"Tell me about a time you had to manage organizational change.",
		},
	},
	"Data Analyst": {
		LevelFresher: {
			"What interests you about data analysis and why did you choose this field?",
			"How would you explain a complex data finding to a non-technical stakeholder?",
			"What tools and technologies have you used for data analysis?",
			"Describe a data project you worked on and the insights you discovered.",
			"How do you ensure data quality and accuracy in your analysis?",
		},
		LevelExperienced: {
			"How do you approach building predictive models and validating their accuracy?",
			"Describe your experience with data visualization and storytelling with data.",
			"How do you handle missing or inconsistent data in large datasets?",
			"Tell me about a time when your analysis influenced a business decision.",
			"What's your process for identifying trends and patterns in complex data?",
		},
	},
}

// Roles returns the supported interview roles, sorted.
func Roles() []string {
	roles := make([]string, 0, len(bank))
	for r := range bank {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// Levels returns the supported experience levels.
func Levels() []string {
	return []string{LevelFresher, LevelExperienced}
}

// Normalize maps a requested role and level onto supported values, falling
// back to the defaults for anything unknown.
func Normalize(role, level string) (string, string) {
	if _, ok := bank[role]; !ok {
		role = DefaultRole
	}
	if level != LevelFresher && level != LevelExperienced {
		level = DefaultLevel
	}
	return role, level
}

// Pick draws n questions from the bank for the role and level, shuffled,
// cycling through the pool when n exceeds its size.
func Pick(role, level string, n int, rng *rand.Rand) []models.Question {
	role, level = Normalize(role, level)
	pool := append([]string(nil), bank[role][level]...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	out := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		text := pool[i%len(pool)]
		out = append(out, models.Question{
			Index:    i,
			Text:     text,
			Category: Classify(text),
		})
	}
	return out
}

// Classify buckets a question as behavioral, technical, or situational from
// its phrasing. Behavioral is the default bucket.
func Classify(question string) string {
	q := strings.ToLower(question)
	for _, kw := range []string{"tell me about", "describe a time", "give me an example", "how did you handle"} {
		if strings.Contains(q, kw) {
			return "behavioral"
		}
	}
	for _, kw := range []string{"how do you", "what is", "explain", "implement", "design", "code", "algorithm"} {
		if strings.Contains(q, kw) {
			return "technical"
		}
	}
	for _, kw := range []string{"what would you do", "how would you", "if you were", "imagine"} {
		if strings.Contains(q, kw) {
			return "situational"
		}
	}
	return "behavioral"
}
