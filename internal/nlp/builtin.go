package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/skellner/converse/pkg/types"
)

// tokenRx splits text into clock times, numbers, words, and punctuation,
// preserving character offsets.
var tokenRx = regexp.MustCompile(`(?i)\d{1,2}:\d{2}(?:am|pm)?|\d+(?:am|pm)?|[A-Za-z]+(?:'[A-Za-z]+)?|[^\sA-Za-z0-9]`)

// clockTokenRx matches a complete clock-time token ("3:30pm", "14:05", "2pm").
var clockTokenRx = regexp.MustCompile(`(?i)^(?:\d{1,2}:\d{2}(?:am|pm)?|\d{1,2}(?:am|pm))$`)

var digitsRx = regexp.MustCompile(`^\d+$`)

// BuiltinTagger is the deterministic lexicon/regex tagging backend. It is a
// stand-in for a statistical pipeline: good enough for the POS and NER cues
// the context engine consumes, with fully reproducible output. Safe for
// concurrent use; ReloadLexicons may be called while Annotate is running.
type BuiltinTagger struct {
	mu  sync.RWMutex
	lex lexSets
}

// lexSets is the compiled membership-set form of Lexicons.
type lexSets struct {
	verbs       map[string]bool
	honorifics  map[string]bool
	events      map[string]bool
	orgSuffixes map[string]bool
	dateWords   map[string]bool
	weekdays    map[string]bool
	months      map[string]bool
}

func compileLexicons(lex Lexicons) lexSets {
	return lexSets{
		verbs:       wordSet(lex.Verbs),
		honorifics:  wordSet(lex.Honorifics),
		events:      wordSet(lex.Events),
		orgSuffixes: wordSet(lex.OrgSuffixes),
		dateWords:   wordSet(lex.DateWords),
		weekdays:    wordSet(lex.Weekdays),
		months:      wordSet(lex.Months),
	}
}

// NewBuiltinTagger creates a built-in tagger with the default lexicons.
func NewBuiltinTagger() *BuiltinTagger {
	return NewBuiltinTaggerWithLexicons(DefaultLexicons())
}

// NewBuiltinTaggerWithLexicons creates a built-in tagger with custom lexicons.
func NewBuiltinTaggerWithLexicons(lex Lexicons) *BuiltinTagger {
	return &BuiltinTagger{lex: compileLexicons(lex)}
}

// Model returns the model identifier of the built-in backend.
func (t *BuiltinTagger) Model() string {
	return "builtin"
}

// ReloadLexicons swaps in a new lexicon set. In-flight annotations finish
// with the old set.
func (t *BuiltinTagger) ReloadLexicons(lex Lexicons) {
	compiled := compileLexicons(lex)
	t.mu.Lock()
	t.lex = compiled
	t.mu.Unlock()
}

// Annotate tokenizes, POS-tags, and entity-tags the text. The built-in
// backend never fails; it always returns an annotation.
func (t *BuiltinTagger) Annotate(_ context.Context, text string) (*Annotation, error) {
	t.mu.RLock()
	lex := t.lex
	t.mu.RUnlock()

	ann := &Annotation{Text: text}
	for _, loc := range tokenRx.FindAllStringIndex(text, -1) {
		tok := Token{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]}
		ann.Tokens = append(ann.Tokens, tok)
	}
	for i := range ann.Tokens {
		ann.Tokens[i].Tag = lex.tagToken(ann.Tokens[i].Text, i)
	}

	ann.Entities = lex.findEntities(ann)
	sort.Slice(ann.Entities, func(i, j int) bool {
		return ann.Entities[i].Start < ann.Entities[j].Start
	})
	return ann, nil
}

// tagToken assigns a Penn-style POS tag to a single token. Position matters
// only for verbs: a leading verb is tagged as base form (imperative cue).
func (l lexSets) tagToken(tok string, index int) string {
	lower := strings.ToLower(tok)

	if clockTokenRx.MatchString(tok) || digitsRx.MatchString(tok) {
		return "CD"
	}

	switch lower {
	case "what", "who", "whom":
		return "WP"
	case "which":
		return "WDT"
	case "when", "where", "why", "how":
		return "WRB"
	case "i", "you", "it", "he", "she", "we", "they", "them", "me", "us", "him", "her":
		return "PRP"
	case "my", "your", "his", "its", "our", "their":
		return "PRP$"
	case "a", "an", "the", "this", "that", "these", "those":
		return "DT"
	case "to", "with", "for", "at", "on", "in", "by", "of", "from", "about", "before", "after":
		return "IN"
	case "and", "or", "but":
		return "CC"
	case "must", "should", "can", "could", "will", "would", "may", "might", "shall":
		return "MD"
	case "urgent", "important", "critical", "new", "quick", "free", "available", "busy", "pending", "current":
		return "JJ"
	}

	if l.verbs[lower] {
		if index == 0 {
			return "VB"
		}
		return "VBP"
	}
	if l.honorifics[strings.TrimSuffix(lower, ".")] {
		return "NNP"
	}
	if len(tok) == 1 && !unicode.IsLetter(rune(tok[0])) && !unicode.IsDigit(rune(tok[0])) {
		return "."
	}
	if unicode.IsUpper(rune(tok[0])) {
		return "NNP"
	}
	return "NN"
}

// findEntities runs the entity passes over the tokens: clock times, dates,
// event words, then proper-noun runs (ORG/PERSON).
func (l lexSets) findEntities(ann *Annotation) []EntitySpan {
	tokens := ann.Tokens
	consumed := make([]bool, len(tokens))
	var spans []EntitySpan

	add := func(first, last int, label string, confidence float64) {
		span := EntitySpan{
			Text:       ann.Text[tokens[first].Start:tokens[last].End],
			Start:      tokens[first].Start,
			End:        tokens[last].End,
			Label:      label,
			Confidence: confidence,
			FirstToken: first,
			LastToken:  last,
		}
		span.Dependencies = l.spanDependencies(tokens, first, last)
		for i := first; i <= last; i++ {
			consumed[i] = true
		}
		spans = append(spans, span)
	}

	lower := make([]string, len(tokens))
	for i, tok := range tokens {
		lower[i] = strings.ToLower(tok.Text)
	}

	// Clock times: "3:30pm", "14:05", "2pm", and split "2 pm".
	for i := range tokens {
		if consumed[i] {
			continue
		}
		if clockTokenRx.MatchString(tokens[i].Text) && !digitsRx.MatchString(tokens[i].Text) {
			add(i, i, types.LabelTime, 0.9)
			continue
		}
		if digitsRx.MatchString(tokens[i].Text) && i+1 < len(tokens) && (lower[i+1] == "am" || lower[i+1] == "pm") {
			add(i, i+1, types.LabelTime, 0.9)
		}
	}

	// Dates: relative keywords, "next week"/"last week", weekday and month names.
	for i := range tokens {
		if consumed[i] {
			continue
		}
		if (lower[i] == "next" || lower[i] == "last") && i+1 < len(tokens) &&
			(lower[i+1] == "week" || lower[i+1] == "month" || l.weekdays[lower[i+1]]) {
			add(i, i+1, types.LabelDate, 0.9)
			continue
		}
		if l.dateWords[lower[i]] || l.weekdays[lower[i]] {
			add(i, i, types.LabelDate, 0.9)
			continue
		}
		if l.months[lower[i]] && unicode.IsUpper(rune(tokens[i].Text[0])) {
			last := i
			if i+1 < len(tokens) && digitsRx.MatchString(tokens[i+1].Text) {
				last = i + 1
			}
			add(i, last, types.LabelDate, 0.9)
		}
	}

	// Event words.
	for i := range tokens {
		if !consumed[i] && l.events[lower[i]] {
			add(i, i, types.LabelEvent, 0.9)
		}
	}

	// Proper-noun runs -> ORG or PERSON. Leading honorifics stay outside the
	// span so the extractor can pick them up as titles. A single capitalized
	// token at position 0 is skipped: sentence case is indistinguishable from
	// a proper noun there.
	for i := 0; i < len(tokens); i++ {
		if consumed[i] || tokens[i].Tag != "NNP" || l.honorifics[strings.TrimSuffix(lower[i], ".")] {
			continue
		}
		j := i
		for j+1 < len(tokens) && tokens[j+1].Tag == "NNP" && !consumed[j+1] && !l.honorifics[strings.TrimSuffix(lower[j+1], ".")] {
			j++
		}
		label := types.LabelPerson
		if l.orgSuffixes[strings.TrimSuffix(lower[j], ".")] || isAcronym(tokens[i].Text) {
			label = types.LabelOrg
		}
		hasHonorific := i > 0 && l.honorifics[strings.TrimSuffix(lower[i-1], ".")]
		if label == types.LabelPerson && i == 0 && j == 0 && !hasHonorific {
			continue
		}
		add(i, j, label, 0.85)
		i = j
	}

	return spans
}

// spanDependencies derives shallow dependency edges for a span: a preceding
// determiner or adjective, and leading tokens of multi-word spans as
// compounds of the head (last) token.
func (l lexSets) spanDependencies(tokens []Token, first, last int) []types.DependencyRelation {
	var deps []types.DependencyRelation
	if first > 0 {
		prev := tokens[first-1]
		switch prev.Tag {
		case "DT":
			deps = append(deps, types.DependencyRelation{Relation: "det", Text: prev.Text, POS: prev.Tag})
		case "JJ":
			deps = append(deps, types.DependencyRelation{Relation: "amod", Text: prev.Text, POS: prev.Tag})
		}
	}
	for i := first; i < last; i++ {
		deps = append(deps, types.DependencyRelation{Relation: "compound", Text: tokens[i].Text, POS: tokens[i].Tag})
	}
	return deps
}

// isAcronym reports whether a token looks like an all-caps acronym (IBM, NASA).
func isAcronym(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	for _, r := range tok {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
