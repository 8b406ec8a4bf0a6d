package premortem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/forage-assist/internal/logging"
)

// DefaultDescription is used when no documentation could be read.
const DefaultDescription = "General software project"

type docTier struct {
	label      string
	candidates []string
	limit      int
}

var docTiers = []docTier{
	{"README", []string{"README.md", "readme.md"}, 5000},
	{"CLAUDE.md", []string{"CLAUDE.md", ".claude/CLAUDE.md"}, 3000},
	{"AGENTS.md", []string{"AGENTS.md"}, 2000},
}

const steeringLimit = 1000

// InferDescription assembles a description from the project's documentation:
// the README, CLAUDE.md, AGENTS.md and every .kiro/steering markdown file,
// each truncated and prefixed with its label.
func InferDescription(root string) string {
	var parts []string

	for _, tier := range docTiers {
		for _, name := range tier.candidates {
			content, ok := readPrefix(root, name, tier.limit)
			if !ok {
				continue
			}
			parts = append(parts, tier.label+": "+content)
			break
		}
	}

	for _, name := range steeringFiles(root) {
		if content, ok := readPrefix(root, filepath.Join(".kiro", "steering", name), steeringLimit); ok {
			parts = append(parts, name+": "+content)
		}
	}

	if len(parts) == 0 {
		return DefaultDescription
	}
	return strings.Join(parts, "\n\n")
}

func steeringFiles(root string) []string {
	dir, err := securejoin.SecureJoin(root, filepath.Join(".kiro", "steering"))
	if err != nil {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// readPrefix reads at most limit characters of root/name. The path is
// resolved inside root.
func readPrefix(root, name string, limit int) (string, bool) {
	path, err := securejoin.SecureJoin(root, name)
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("cannot read documentation", "path", path, "error", err)
		}
		return "", false
	}
	return truncateRunes(string(data), limit), true
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
