package nlp

import (
	"fmt"
	"log"
	"strings"
)

// Options configures tagger construction.
type Options struct {
	Model       string // Model identifier: "", "builtin", or "remote"
	RemoteURL   string // Base URL of the remote tagging service (remote only)
	LexiconPath string // Optional lexicon override file (builtin only)
	CacheSize   int    // Annotation cache size; <= 0 uses the default
	NoBreaker   bool   // Disable the circuit breaker (tests)
}

// NewTagger creates the tagger stack for the given options: the backend
// selected by the model identifier, wrapped in a circuit breaker and an
// annotation cache. The returned BuiltinTagger is non-nil only for the
// builtin backend, and supports lexicon reloads.
func NewTagger(opts Options) (Tagger, *BuiltinTagger, error) {
	var backend Tagger
	var builtin *BuiltinTagger

	switch strings.ToLower(opts.Model) {
	case "", "builtin":
		lex := DefaultLexicons()
		if opts.LexiconPath != "" {
			loaded, err := LoadLexiconFile(opts.LexiconPath)
			if err != nil {
				log.Printf("nlp: %v, using default lexicons", err)
			} else {
				lex = loaded
			}
		}
		builtin = NewBuiltinTaggerWithLexicons(lex)
		backend = builtin
	case "remote":
		if opts.RemoteURL == "" {
			return nil, nil, fmt.Errorf("nlp: remote tagger requires a base URL")
		}
		backend = NewRemoteTagger(RemoteConfig{BaseURL: opts.RemoteURL, Model: "remote"})
	default:
		return nil, nil, fmt.Errorf("nlp: unsupported tagging model %q", opts.Model)
	}

	if !opts.NoBreaker {
		backend = NewBreakerTagger(backend)
	}

	cached, err := NewCachingTagger(backend, opts.CacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("nlp: failed to create annotation cache: %w", err)
	}
	return cached, builtin, nil
}
