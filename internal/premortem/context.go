package premortem

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/project"
)

// ProjectContext is what the analysis learned about the project.
type ProjectContext struct {
	Domain      string   `json:"domain" yaml:"domain"`
	Maturity    string   `json:"maturity" yaml:"maturity"`
	TechStack   []string `json:"tech_stack" yaml:"tech_stack"`
	Scale       string   `json:"scale" yaml:"scale"`
	Description string   `json:"description" yaml:"description"`
}

// Domains, maturities and scales reported by the detectors.
const (
	DomainWeb            = "web-development"
	DomainMobile         = "mobile-apps"
	DomainData           = "data-systems"
	DomainInfrastructure = "infrastructure"
	DomainSecurity       = "security"

	MaturityPOC        = "poc"
	MaturityMVP        = "mvp"
	MaturityProduction = "production"

	ScaleSmall  = "small"
	ScaleMedium = "medium"
	ScaleLarge  = "large"
)

type patternGroup struct {
	name     string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

var domainPatterns = []patternGroup{
	{DomainWeb, compileAll(
		`\b(react|vue|angular|svelte)\b`,
		`\b(node\.?js|express|fastify|nest\.?js)\b`,
		`\b(django|flask|rails|spring)\b`,
		`\b(api|rest|graphql|http)\b`,
		`\b(web|frontend|backend|fullstack)\b`,
	)},
	{DomainMobile, compileAll(
		`\b(ios|swift|swiftui|uikit)\b`,
		`\b(android|kotlin|jetpack)\b`,
		`\b(react[-\s]native|flutter|xamarin)\b`,
		`\b(mobile|app)\b`,
	)},
	{DomainData, compileAll(
		`\b(spark|hadoop|flink|kafka)\b`,
		`\b(etl|pipeline|warehouse|lakehouse)\b`,
		`\b(bigquery|redshift|snowflake)\b`,
		`\b(data[-\s]engineering|analytics)\b`,
	)},
	{DomainInfrastructure, compileAll(
		`\b(kubernetes|k8s|docker|container)\b`,
		`\b(terraform|ansible|cloudformation)\b`,
		`\b(aws|gcp|azure|cloud)\b`,
		`\b(devops|infrastructure|deployment)\b`,
	)},
	{DomainSecurity, compileAll(
		`\b(security|encryption|authentication)\b`,
		`\b(oauth|jwt|iam|rbac)\b`,
		`\b(penetration|vulnerability|compliance)\b`,
	)},
}

var maturityPatterns = []patternGroup{
	{MaturityPOC, compileAll(`\b(poc|proof[-\s]of[-\s]concept|prototype|experiment)\b`)},
	{MaturityMVP, compileAll(`\b(mvp|minimum[-\s]viable|beta|alpha)\b`)},
	{MaturityProduction, compileAll(`\b(production|enterprise|scale|mission[-\s]critical)\b`)},
}

var scalePatterns = []patternGroup{
	{ScaleSmall, compileAll(`\b(\d+\s*users?)\b.*\b([1-9]\d{0,2}|1000)\b`, `\bsmall\b`)},
	{ScaleMedium, compileAll(`\b(\d+k?\s*users?)\b.*\b(1k|10k|100k)\b`, `\bmedium\b`)},
	{ScaleLarge, compileAll(`\b(\d+k?\s*users?)\b.*\b([1-9]\d{2}k|million)\b`, `\blarge\b`)},
}

var techPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"React", regexp.MustCompile(`(?i)\breact\b`)},
	{"Vue", regexp.MustCompile(`(?i)\bvue\b`)},
	{"Angular", regexp.MustCompile(`(?i)\bangular\b`)},
	{"Svelte", regexp.MustCompile(`(?i)\bsvelte\b`)},
	{"Node.js", regexp.MustCompile(`(?i)\bnode\.?js\b`)},
	{"Express", regexp.MustCompile(`(?i)\bexpress\b`)},
	{"Next.js", regexp.MustCompile(`(?i)\bnext\.?js\b`)},
	{"Django", regexp.MustCompile(`(?i)\bdjango\b`)},
	{"Flask", regexp.MustCompile(`(?i)\bflask\b`)},
	{"PostgreSQL", regexp.MustCompile(`(?i)\b(postgres|postgresql)\b`)},
	{"MySQL", regexp.MustCompile(`(?i)\bmysql\b`)},
	{"MongoDB", regexp.MustCompile(`(?i)\bmongo(db)?\b`)},
	{"Redis", regexp.MustCompile(`(?i)\bredis\b`)},
	{"Docker", regexp.MustCompile(`(?i)\bdocker\b`)},
	{"Kubernetes", regexp.MustCompile(`(?i)\b(kubernetes|k8s)\b`)},
}

func matchCount(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

// DetectDomain returns the domain whose pattern groups match most often.
// Ties go to the earlier domain; no match at all means web development.
func DetectDomain(text string) string {
	text = strings.ToLower(text)
	best, bestScore := DomainWeb, 0
	for _, g := range domainPatterns {
		if score := matchCount(text, g.patterns); score > bestScore {
			best, bestScore = g.name, score
		}
	}
	return best
}

func firstMatching(text string, groups []patternGroup, fallback string) string {
	text = strings.ToLower(text)
	for _, g := range groups {
		if matchCount(text, g.patterns) > 0 {
			return g.name
		}
	}
	return fallback
}

// DetectMaturity returns the first of poc, mvp or production mentioned,
// defaulting to mvp.
func DetectMaturity(text string) string {
	return firstMatching(text, maturityPatterns, MaturityMVP)
}

// DetectScale returns the first of small, medium or large indicated,
// defaulting to medium.
func DetectScale(text string) string {
	return firstMatching(text, scalePatterns, ScaleMedium)
}

// ExtractTechStack finds known technologies in text and in the dependencies
// of any package.json among files. Relative paths are resolved against root.
// The result is sorted and unique.
func ExtractTechStack(text, root string, files []string) []string {
	set := make(map[string]bool)
	for _, tp := range techPatterns {
		if tp.pattern.MatchString(text) {
			set[tp.name] = true
		}
	}

	for _, f := range files {
		if filepath.Base(f) != "package.json" {
			continue
		}
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Debug("skipping package.json", "path", path, "error", err)
			continue
		}
		deps, err := project.PackageDependencyNames(data)
		if err != nil {
			logging.Debug("skipping malformed package.json", "path", path, "error", err)
			continue
		}
		for _, dep := range deps {
			dep = strings.ToLower(dep)
			switch {
			case strings.Contains(dep, "react"):
				set["React"] = true
			case strings.Contains(dep, "next"):
				set["Next.js"] = true
			case strings.Contains(dep, "express"):
				set["Express"] = true
			}
		}
	}

	stack := make([]string, 0, len(set))
	for name := range set {
		stack = append(stack, name)
	}
	sort.Strings(stack)
	return stack
}

// AnalyzeContext builds the project context. A blank description is
// replaced by InferDescription(root).
func AnalyzeContext(root, description string, files []string) ProjectContext {
	if strings.TrimSpace(description) == "" {
		description = InferDescription(root)
	}

	return ProjectContext{
		Domain:      DetectDomain(description),
		Maturity:    DetectMaturity(description),
		TechStack:   ExtractTechStack(description, root, files),
		Scale:       DetectScale(description),
		Description: description,
	}
}
