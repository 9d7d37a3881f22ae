package nlp

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the number of cached annotations per tagger.
const defaultCacheSize = 256

// CachingTagger memoizes annotations by turn text. Repeated utterances
// ("yes", "show my tasks") skip backend round-trips. Annotations are treated
// as immutable once returned; callers must not modify them.
type CachingTagger struct {
	inner Tagger
	cache *lru.Cache[string, *Annotation]
}

// NewCachingTagger wraps the given tagger with an LRU annotation cache.
// Size <= 0 uses the default.
func NewCachingTagger(inner Tagger, size int) (*CachingTagger, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *Annotation](size)
	if err != nil {
		return nil, err
	}
	return &CachingTagger{inner: inner, cache: cache}, nil
}

// Model returns the wrapped tagger's model identifier.
func (t *CachingTagger) Model() string {
	return t.inner.Model()
}

// Purge drops all cached annotations. Called after lexicon reloads so stale
// analyses do not outlive the lexicons that produced them.
func (t *CachingTagger) Purge() {
	t.cache.Purge()
}

// Annotate returns a cached annotation when available, otherwise delegates
// to the wrapped tagger. Failed annotations are not cached.
func (t *CachingTagger) Annotate(ctx context.Context, text string) (*Annotation, error) {
	if ann, ok := t.cache.Get(text); ok {
		return ann, nil
	}
	ann, err := t.inner.Annotate(ctx, text)
	if err != nil {
		return nil, err
	}
	t.cache.Add(text, ann)
	return ann, nil
}
