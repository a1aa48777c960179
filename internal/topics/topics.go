// Package topics finds the recurring themes in a team's free-text wellness
// notes (day summaries and score reasons) for the rollup digest.
//
// Tokenization is Unicode-aware and locale-lowercased. Each note counts a
// term at most once, so one talkative player cannot dominate the result.
// Counters are not safe for concurrent use; build one per digest.
package topics

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Term is a counted theme.
type Term struct {
	Term  string
	Count int
}

// Option configures a Counter.
type Option func(*config)

type config struct {
	minRunes  int
	stopwords map[string]struct{}
	tag       language.Tag
}

func defaultConfig() config {
	return config{
		minRunes:  4,
		stopwords: toSet(defaultStopwords),
		tag:       language.English,
	}
}

// WithMinRunes drops terms shorter than n runes.
func WithMinRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minRunes = n
		}
	}
}

// WithStopwords adds words to the default stop list.
func WithStopwords(words []string) Option {
	return func(c *config) {
		for w := range toSet(words) {
			c.stopwords[w] = struct{}{}
		}
	}
}

// WithLocale sets the lower-casing rules (BCP 47 tag). Unknown tags keep
// the default.
func WithLocale(tag string) Option {
	return func(c *config) {
		if t, err := language.Parse(tag); err == nil {
			c.tag = t
		}
	}
}

// Counter accumulates document frequencies of terms.
type Counter struct {
	cfg    config
	lower  cases.Caser
	counts map[string]int
	docs   int
}

// NewCounter returns an empty Counter.
func NewCounter(opts ...Option) *Counter {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Counter{cfg: cfg, lower: cases.Lower(cfg.tag), counts: make(map[string]int)}
}

// Add counts the distinct terms of one note. Blank notes are ignored.
func (c *Counter) Add(note string) {
	toks := c.tokenize(note)
	if len(toks) == 0 {
		return
	}
	c.docs++
	for t := range toks {
		c.counts[t]++
	}
}

// Docs is the number of non-blank notes added.
func (c *Counter) Docs() int { return c.docs }

// Top returns up to k terms seen in at least minDocs notes, most frequent
// first; ties sort alphabetically.
func (c *Counter) Top(k, minDocs int) []Term {
	if k <= 0 || len(c.counts) == 0 {
		return nil
	}
	if minDocs < 1 {
		minDocs = 1
	}
	buf := make([]Term, 0, len(c.counts))
	for t, n := range c.counts {
		if n >= minDocs {
			buf = append(buf, Term{Term: t, Count: n})
		}
	}
	sort.Slice(buf, func(a, b int) bool {
		if buf[a].Count != buf[b].Count {
			return buf[a].Count > buf[b].Count
		}
		return buf[a].Term < buf[b].Term
	})
	if k > len(buf) {
		k = len(buf)
	}
	return buf[:k]
}

// Terms is Top reduced to the term strings.
func (c *Counter) Terms(k, minDocs int) []string {
	top := c.Top(k, minDocs)
	out := make([]string, len(top))
	for i, t := range top {
		out[i] = t.Term
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func (c *Counter) tokenize(s string) map[string]struct{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	words := wordRE.FindAllString(c.lower.String(s), -1)
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < c.cfg.minRunes {
			continue
		}
		if _, skip := c.cfg.stopwords[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	return m
}
