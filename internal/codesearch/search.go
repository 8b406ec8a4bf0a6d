// Package codesearch looks for code related to a planning question with
// ripgrep and folds the hits into an auto answer.
package codesearch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// Defaults used when the Searcher is not configured otherwise.
const (
	DefaultMaxTerms = 5
	DefaultMaxHits  = 10
	DefaultTimeout  = 5 * time.Second

	// hitsPerTerm bounds how many hits Enhance lists for one term.
	hitsPerTerm = 3
)

// codeTypes is the ripgrep file type covering source files.
const codeTypes = "code:*.{ts,tsx,js,jsx,py,go,rs,java}"

var categoryTerms = map[string][]string{
	"Authentication": {"auth", "login", "token", "session"},
	"Security":       {"encrypt", "hash", "secure", "validate"},
	"Performance":    {"cache", "optimize", "index", "query"},
}

// Hit is one matching line.
type Hit struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// TermHits groups the hits found for one term.
type TermHits struct {
	Term string `json:"term"`
	Hits []Hit  `json:"hits"`
}

// Searcher runs rg in a project root.
type Searcher struct {
	root     string
	exec     system.CommandExecutor
	timeout  time.Duration
	maxTerms int
	maxHits  int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithExecutor sets the command executor.
func WithExecutor(exec system.CommandExecutor) Option {
	return func(s *Searcher) { s.exec = exec }
}

// WithTimeout bounds each rg invocation.
func WithTimeout(d time.Duration) Option {
	return func(s *Searcher) { s.timeout = d }
}

// WithLimits sets the number of terms searched and the hits kept per term.
// Non-positive values keep the defaults.
func WithLimits(maxTerms, maxHits int) Option {
	return func(s *Searcher) {
		if maxTerms > 0 {
			s.maxTerms = maxTerms
		}
		if maxHits > 0 {
			s.maxHits = maxHits
		}
	}
}

// New creates a Searcher rooted at root.
func New(root string, opts ...Option) *Searcher {
	s := &Searcher{
		root:     root,
		exec:     system.DefaultExecutor(),
		timeout:  DefaultTimeout,
		maxTerms: DefaultMaxTerms,
		maxHits:  DefaultMaxHits,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Terms picks search terms for q: its triggers, capitalised words longer
// than three characters, then category terms. At most max unique terms are
// returned in that order.
func Terms(q premortem.Question, max int) []string {
	var candidates []string
	candidates = append(candidates, q.Triggers...)
	for _, word := range strings.Fields(q.Text) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		r := []rune(word)
		if len(r) > 3 && unicode.IsUpper(r[0]) {
			candidates = append(candidates, word)
		}
	}
	candidates = append(candidates, categoryTerms[q.Category]...)

	seen := make(map[string]bool)
	terms := []string{}
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		terms = append(terms, c)
		if len(terms) == max {
			break
		}
	}
	return terms
}

// Available reports whether rg is installed.
func (s *Searcher) Available() bool {
	_, err := s.exec.LookPath("rg")
	return err == nil
}

// Search runs rg for term and returns up to the configured number of hits.
// A missing rg, a timeout or no match all yield no hits.
func (s *Searcher) Search(ctx context.Context, term string) []Hit {
	cmd := system.Command{
		Name: "rg",
		Args: []string{
			"--json",
			"--max-count", strconv.Itoa(s.maxHits),
			"--type-add", codeTypes,
			"--type", "code",
			"--fixed-strings",
			"--", term,
		},
		Dir:     s.root,
		Timeout: s.timeout,
	}
	res, err := s.exec.Run(ctx, cmd)
	if err != nil {
		logging.Debug("code search failed", "term", term, "error", err)
		return nil
	}
	if !res.Success() {
		return nil
	}
	hits := ParseMatches(res.Stdout)
	if len(hits) > s.maxHits {
		hits = hits[:s.maxHits]
	}
	return hits
}

// SearchQuestion searches every term of q and keeps the terms with hits.
func (s *Searcher) SearchQuestion(ctx context.Context, q premortem.Question) []TermHits {
	var results []TermHits
	for _, term := range Terms(q, s.maxTerms) {
		if hits := s.Search(ctx, term); len(hits) > 0 {
			results = append(results, TermHits{Term: term, Hits: hits})
		}
	}
	return results
}

type rgEvent struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		LineNumber int `json:"line_number"`
	} `json:"data"`
}

// ParseMatches extracts match events from rg --json output. Lines that are
// not valid JSON are skipped.
func ParseMatches(out string) []Hit {
	var hits []Hit
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev rgEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Type != "match" {
			continue
		}
		hits = append(hits, Hit{Path: ev.Data.Path.Text, Line: ev.Data.LineNumber})
	}
	return hits
}

// Enhance appends a "## Codebase Analysis" section to answer listing up to
// three hits per term. With no results the answer is returned unchanged.
func Enhance(answer string, results []TermHits) string {
	if len(results) == 0 {
		return answer
	}

	lines := []string{"\n\n## Codebase Analysis\n"}
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("\n### Found: `%s`\n", r.Term))
		for i, h := range r.Hits {
			if i == hitsPerTerm {
				break
			}
			lines = append(lines, fmt.Sprintf("- match in `%s:%d`", h.Path, h.Line))
		}
	}
	return answer + strings.Join(lines, "\n")
}
