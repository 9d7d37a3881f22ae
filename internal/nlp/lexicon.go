package nlp

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicons holds the word lists the built-in tagger classifies with.
// All entries are matched lowercase. A lexicon file replaces only the
// lists it names; omitted lists keep their defaults.
type Lexicons struct {
	Verbs       []string `yaml:"verbs"`        // Tagged VB when leading, VBP otherwise
	Honorifics  []string `yaml:"honorifics"`   // Mr, Dr, ... (person cues)
	Events      []string `yaml:"events"`       // meeting, appointment, ... -> EVENT
	OrgSuffixes []string `yaml:"org_suffixes"` // inc, corp, ... (trailing token -> ORG)
	DateWords   []string `yaml:"date_words"`   // today, tomorrow, ... -> DATE
	Weekdays    []string `yaml:"weekdays"`     // monday..sunday -> DATE
	Months      []string `yaml:"months"`       // january..december -> DATE
}

// DefaultLexicons returns the built-in English word lists.
func DefaultLexicons() Lexicons {
	return Lexicons{
		Verbs: []string{
			"schedule", "book", "plan", "create", "add", "make", "move",
			"check", "read", "process", "remind", "show", "organize",
			"optimize", "cancel", "reschedule", "set", "send", "finish",
			"prepare", "review", "help", "go", "get", "find", "extract",
			"balance", "email", "need", "have", "want",
		},
		Honorifics:  []string{"mr", "mrs", "ms", "dr", "prof"},
		Events:      []string{"meeting", "appointment", "call", "standup", "sync", "interview", "lunch", "dinner", "demo", "workshop", "conference"},
		OrgSuffixes: []string{"inc", "corp", "llc", "ltd", "co", "company", "team", "labs"},
		DateWords:   []string{"today", "tomorrow", "yesterday", "tonight", "now"},
		Weekdays:    []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
		Months:      []string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"},
	}
}

// LoadLexiconFile reads lexicon overrides from a YAML file and merges them
// over the defaults. Lists absent from the file keep their default entries.
func LoadLexiconFile(path string) (Lexicons, error) {
	lex := DefaultLexicons()

	data, err := os.ReadFile(path)
	if err != nil {
		return lex, fmt.Errorf("nlp: failed to read lexicon file: %w", err)
	}

	var overrides Lexicons
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return lex, fmt.Errorf("nlp: failed to parse lexicon file: %w", err)
	}

	if len(overrides.Verbs) > 0 {
		lex.Verbs = overrides.Verbs
	}
	if len(overrides.Honorifics) > 0 {
		lex.Honorifics = overrides.Honorifics
	}
	if len(overrides.Events) > 0 {
		lex.Events = overrides.Events
	}
	if len(overrides.OrgSuffixes) > 0 {
		lex.OrgSuffixes = overrides.OrgSuffixes
	}
	if len(overrides.DateWords) > 0 {
		lex.DateWords = overrides.DateWords
	}
	if len(overrides.Weekdays) > 0 {
		lex.Weekdays = overrides.Weekdays
	}
	if len(overrides.Months) > 0 {
		lex.Months = overrides.Months
	}

	return lex, nil
}

// wordSet builds a lowercase membership set from a word list.
func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}
