package gap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	securejoin "github.com/cyphar/filepath-securejoin"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/forage-assist/internal/codesearch"
	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/premortem"
)

const (
	// maxReadChars bounds how many characters of each file are considered.
	maxReadChars = 10000

	minRelevance     = 0.2
	maxTextKeywords  = 10
	paragraphKeys    = 5
	maxParagraphs    = 5
	unknownQuestion  = "UNKNOWN"
	answerSeparator  = "\n\n---\n\n"
	paragraphDivider = "\n\n"
)

var (
	docFiles     = []string{"README.md", "CLAUDE.md", ".claude/CLAUDE.md", "AGENTS.md"}
	packageFiles = []string{"package.json", "requirements.txt", "Cargo.toml", "go.mod"}
)

// CodeSearcher finds code related to a question.
type CodeSearcher interface {
	SearchQuestion(ctx context.Context, q premortem.Question) []codesearch.TermHits
}

// Analyzer runs gap analysis over one project root.
type Analyzer struct {
	root   string
	search CodeSearcher
	cache  map[string]string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCodeSearch enriches kept auto answers with code search hits.
func WithCodeSearch(s CodeSearcher) Option {
	return func(a *Analyzer) {
		a.search = s
	}
}

// New creates an Analyzer for root.
func New(root string, opts ...Option) *Analyzer {
	a := &Analyzer{root: root, cache: make(map[string]string)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CandidateFiles lists the files, relative to the root, that may answer a
// question. Only files that exist are returned.
func (a *Analyzer) CandidateFiles() []string {
	var files []string
	for _, name := range docFiles {
		if a.isFile(name) {
			files = append(files, name)
		}
	}

	if steering, err := a.resolve(".kiro/steering"); err == nil {
		if matches, err := filepath.Glob(filepath.Join(steering, "*.md")); err == nil {
			sort.Strings(matches)
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() {
					files = append(files, filepath.Join(".kiro", "steering", filepath.Base(m)))
				}
			}
		}
	}

	files = append(files, a.designDocs()...)

	for _, name := range packageFiles {
		if a.isFile(name) {
			files = append(files, name)
		}
	}
	return files
}

func (a *Analyzer) designDocs() []string {
	specs, err := a.resolve(".kiro/specs")
	if err != nil {
		return nil
	}
	var docs []string
	_ = filepath.WalkDir(specs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == "design.md" {
			rel, relErr := filepath.Rel(a.root, path)
			if relErr == nil {
				docs = append(docs, rel)
			}
		}
		return nil
	})
	sort.Strings(docs)
	return docs
}

func (a *Analyzer) resolve(name string) (string, error) {
	return securejoin.SecureJoin(a.root, name)
}

func (a *Analyzer) isFile(name string) bool {
	path, err := a.resolve(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// read returns up to maxReadChars characters of name with any markdown front matter
// removed. Contents are cached per Analyzer.
func (a *Analyzer) read(name string) (string, bool) {
	if content, ok := a.cache[name]; ok {
		return content, true
	}

	path, err := a.resolve(name)
	if err != nil {
		logging.Warn("failed to resolve file", "file", name, "error", err)
		return "", false
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("failed to read file", "file", name, "error", err)
		}
		return "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxReadChars*utf8.UTFMax))
	if err != nil {
		logging.Warn("failed to read file", "file", name, "error", err)
		return "", false
	}
	data = firstChars(data, maxReadChars)

	content := string(data)
	if strings.HasSuffix(strings.ToLower(name), ".md") {
		content = stripFrontMatter(name, data)
	}
	a.cache[name] = content
	return content, true
}

// firstChars returns the prefix of data holding at most n characters.
func firstChars(data []byte, n int) []byte {
	for i, pos := 0, 0; pos < len(data); i++ {
		if i == n {
			return data[:pos]
		}
		_, size := utf8.DecodeRune(data[pos:])
		pos += size
	}
	return data
}

func stripFrontMatter(name string, data []byte) string {
	var matter map[string]any
	yamlFormat := frontmatter.NewFormat("---", "---", yaml.Unmarshal)
	body, err := frontmatter.Parse(bytes.NewReader(data), &matter, yamlFormat)
	if err != nil {
		logging.Debug("keeping unparsable front matter", "file", name, "error", err)
		return string(data)
	}
	return string(body)
}

// Keywords returns the lower-cased triggers of q followed by the first ten
// words of its text.
func Keywords(q premortem.Question) []string {
	keywords := make([]string, 0, len(q.Triggers)+maxTextKeywords)
	for _, t := range q.Triggers {
		keywords = append(keywords, strings.ToLower(t))
	}
	words := strings.Fields(strings.ToLower(q.Text))
	if len(words) > maxTextKeywords {
		words = words[:maxTextKeywords]
	}
	return append(keywords, words...)
}

// ExtractRelevant returns the paragraphs of file that mention the question
// and the file's relevance. ok is false when the file is unreadable, empty,
// scores below 0.2 or has no matching paragraph.
func (a *Analyzer) ExtractRelevant(file string, q premortem.Question) (content string, relevance float64, ok bool) {
	text, ok := a.read(file)
	if !ok || text == "" {
		return "", 0, false
	}

	keywords := Keywords(q)
	if len(keywords) == 0 {
		return "", 0, false
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	relevance = min(float64(hits)/float64(len(keywords)), 1)
	if relevance < minRelevance {
		return "", 0, false
	}

	top := keywords
	if len(top) > paragraphKeys {
		top = top[:paragraphKeys]
	}

	var paragraphs []string
	for _, para := range strings.Split(text, paragraphDivider) {
		paraLower := strings.ToLower(para)
		for _, kw := range top {
			if strings.Contains(paraLower, kw) {
				paragraphs = append(paragraphs, strings.TrimSpace(para))
				break
			}
		}
	}
	if len(paragraphs) == 0 {
		return "", 0, false
	}
	if len(paragraphs) > maxParagraphs {
		paragraphs = paragraphs[:maxParagraphs]
	}
	return strings.Join(paragraphs, paragraphDivider), relevance, true
}

// InferAnswer assembles an answer from every relevant file. Confidence is
// the mean relevance of the contributing files.
func (a *Analyzer) InferAnswer(q premortem.Question, files []string) AutoAnswer {
	var parts []string
	sources := []string{}
	total := 0.0

	for _, file := range files {
		content, relevance, ok := a.ExtractRelevant(file, q)
		if !ok {
			continue
		}
		parts = append(parts, "From "+filepath.Base(file)+":\n"+content)
		sources = append(sources, file)
		total += relevance
	}

	if len(parts) == 0 {
		return AutoAnswer{Text: NoAnswerText, Sources: []string{}}
	}
	return AutoAnswer{
		Text:       strings.Join(parts, answerSeparator),
		Confidence: clamp(total / float64(len(parts))),
		Sources:    sources,
	}
}

// Analyze runs the full pipeline for one question against files.
func (a *Analyzer) Analyze(ctx context.Context, q premortem.Question, files []string) Gap {
	answer := a.InferAnswer(q, files)
	coverage := Coverage(answer)
	status := Classify(answer, coverage)

	g := Gap{
		QuestionID:     q.ID,
		QuestionText:   q.Text,
		Status:         status,
		Coverage:       coverage,
		Recommendation: Recommend(q, status, answer),
		Priority:       priorityOf(q),
	}
	if g.QuestionID == "" {
		g.QuestionID = unknownQuestion
	}

	if answer.Confidence > 0 {
		if a.search != nil {
			answer.Text = codesearch.Enhance(answer.Text, a.search.SearchQuestion(ctx, q))
		}
		g.AutoAnswer = &answer
	}

	logging.Debug("analyzed question", "id", g.QuestionID, "status", g.Status, "coverage", g.Coverage)
	return g
}

// AnalyzeAll analyzes every question against the candidate files.
func (a *Analyzer) AnalyzeAll(ctx context.Context, questions []premortem.Question) *Result {
	files := a.CandidateFiles()
	gaps := make([]Gap, 0, len(questions))
	for _, q := range questions {
		gaps = append(gaps, a.Analyze(ctx, q, files))
	}
	return &Result{Gaps: gaps, Summary: Summarize(gaps)}
}
