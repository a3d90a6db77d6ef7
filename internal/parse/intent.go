package parse

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keywords holds the word and phrase sets driving intent classification.
// Words are matched against whitespace-delimited tokens of the lower-cased
// text; phrases are matched as substrings.
type Keywords struct {
	Parts          []string `yaml:"parts"`
	Problem        []string `yaml:"problem"`
	ProblemPhrases []string `yaml:"problem_phrases"`
	Work           []string `yaml:"work"`
	WorkPhrases    []string `yaml:"work_phrases"`
}

// DefaultKeywords returns the tuned built-in keyword sets.
func DefaultKeywords() Keywords {
	return Keywords{
		Parts:          []string{"need", "order", "part", "parts", "buy", "purchase", "ordering"},
		Problem:        []string{"broken", "stuck", "dead", "issue", "problem"},
		ProblemPhrases: []string{"not working", "doesnt work", "doesn't work", "won't start", "wont start"},
		Work:           []string{"fixed", "replaced", "cleaned", "adjusted", "repaired", "installed", "swapped", "changed"},
		WorkPhrases:    []string{"worked on"},
	}
}

// LoadKeywords reads a keyword override file. Sets left empty in the file
// keep their built-in defaults.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	data, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("read keywords: %w", err)
	}
	var override Keywords
	if err := yaml.Unmarshal(data, &override); err != nil {
		return kw, fmt.Errorf("parse keywords: %w", err)
	}
	if len(override.Parts) > 0 {
		kw.Parts = override.Parts
	}
	if len(override.Problem) > 0 {
		kw.Problem = override.Problem
	}
	if len(override.ProblemPhrases) > 0 {
		kw.ProblemPhrases = override.ProblemPhrases
	}
	if len(override.Work) > 0 {
		kw.Work = override.Work
	}
	if len(override.WorkPhrases) > 0 {
		kw.WorkPhrases = override.WorkPhrases
	}
	return kw, nil
}

// Classifier maps message text to a record verdict by keyword priority.
type Classifier struct {
	parts          map[string]bool
	problem        map[string]bool
	work           map[string]bool
	problemPhrases []string
	workPhrases    []string
}

// NewClassifier creates a Classifier from the given keyword sets.
func NewClassifier(kw Keywords) *Classifier {
	return &Classifier{
		parts:          wordSet(kw.Parts),
		problem:        wordSet(kw.Problem),
		work:           wordSet(kw.Work),
		problemPhrases: kw.ProblemPhrases,
		workPhrases:    kw.WorkPhrases,
	}
}

// Classify returns the record verdict for the message text. Priority order:
//
//  1. any parts word        -> VerdictPartsRequest
//  2. any problem word/phrase -> VerdictTicket
//  3. otherwise             -> VerdictLogEntry
//
// Classify never returns VerdictIgnore; it is only reached once an asset or
// reference context exists.
func (c *Classifier) Classify(text string) Verdict {
	textLower := strings.ToLower(text)
	words := splitWords(textLower)

	if matchAny(textLower, words, c.parts, nil) {
		return VerdictPartsRequest
	}
	if matchAny(textLower, words, c.problem, c.problemPhrases) {
		return VerdictTicket
	}
	return VerdictLogEntry
}

// HasWorkIndication reports whether the text contains work words or phrases.
// It does not affect the verdict, only the audit reason attached to log
// entries.
func (c *Classifier) HasWorkIndication(text string) bool {
	textLower := strings.ToLower(text)
	return matchAny(textLower, splitWords(textLower), c.work, c.workPhrases)
}

func matchAny(textLower string, words map[string]bool, keywords map[string]bool, phrases []string) bool {
	for w := range words {
		if keywords[w] {
			return true
		}
	}
	for _, p := range phrases {
		if strings.Contains(textLower, p) {
			return true
		}
	}
	return false
}

func splitWords(textLower string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(textLower) {
		words[w] = true
	}
	return words
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}
