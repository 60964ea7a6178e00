package topics

import (
	"strings"
	"unicode/utf8"

	"github.com/emery7592/presia-backend/internal/domain"
)

// Router is a rule-based classifier mapping query keywords to topics.
// The rule table is a slice, never a map: first-match-wins semantics depend
// on a fixed, deterministic iteration order.
type Router struct {
	rules []domain.TopicRule
}

// NewRouter creates a router over the given rule table; nil uses the
// built-in defaults.
func NewRouter(rules []domain.TopicRule) *Router {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Router{rules: rules}
}

// Detect returns the first rule with any keyword appearing as a
// case-insensitive substring of the query, or nil when none matches.
func (r *Router) Detect(query string) *domain.TopicRule {
	lower := strings.ToLower(query)
	for i := range r.rules {
		for _, kw := range r.rules[i].Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				rule := r.rules[i]
				return &rule
			}
		}
	}
	return nil
}

// Phrases whose presence marks a greeting or a question about the assistant
// itself rather than a domain question.
var greetingPhrases = []string{
	"bonjour", "salut", "hello", "hey", "hi", "bonsoir", "coucou",
	"qui es-tu", "qui es tu", "c'est quoi", "présente-toi", "présente toi",
	"tu es qui", "tu fais quoi", "what are you", "who are you",
	"pourquoi toi", "pourquoi je devrais", "quelle différence",
	"différence avec chatgpt", "plutot qu'une autre", "plutôt qu'une autre",
	"pourquoi pas chatgpt", "en quoi tu es différent", "utiliser toi",
	"autre ia", "chatgpt", "chat gpt",
}

var shortGreetingWords = []string{"salut", "hello", "bonjour", "hey", "hi"}

const shortQueryLimit = 20

// IsGreetingOrMeta reports whether the query is a greeting or a question
// about the assistant itself (comparisons with other assistants included).
// This predicate takes priority over topic detection.
func (r *Router) IsGreetingOrMeta(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return false
	}
	for _, phrase := range greetingPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	// Compound patterns for "why you / what's the difference" phrasings.
	has := func(s string) bool { return strings.Contains(lower, s) }
	switch {
	case has("pourquoi") && has("utiliser"):
		return true
	case has("pourquoi") && has("toi"):
		return true
	case has("quelle") && has("différence"):
		return true
	case has("why") && has("use"):
		return true
	case has("what") && has("difference"):
		return true
	case has("autre") && has("ia"):
		return true
	case has("plutot") || has("plutôt"):
		return true
	}
	// Very short messages containing a greeting word are greetings even
	// when embedded in other text. The limit counts characters, not bytes,
	// so accented text is measured like plain ASCII.
	if utf8.RuneCountInString(lower) < shortQueryLimit {
		for _, w := range shortGreetingWords {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	return false
}
