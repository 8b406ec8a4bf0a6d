package issues

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/config"
	"github.com/firefly-engineering/forage-assist/internal/gap"
	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// Result lists what a run did. Created holds issue URLs, including issues
// that already existed; Skipped and Errors hold question IDs.
type Result struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Chooser narrows the candidate gaps in selective mode.
type Chooser func(candidates []gap.Gap) ([]gap.Gap, error)

// Plan returns the gaps to file issues for under mode, and the IDs of the
// gaps left out. choose is consulted only in selective mode; a nil chooser
// keeps every candidate.
func Plan(gaps []gap.Gap, mode string, choose Chooser) (selected []gap.Gap, skipped []string, err error) {
	selected = Filter(gaps, mode)
	if mode == config.ModeSelective && choose != nil && len(selected) > 0 {
		selected, err = choose(selected)
		if err != nil {
			return nil, nil, err
		}
	}

	picked := make(map[int]bool, len(selected))
	for _, s := range selected {
		for i := range gaps {
			if !picked[i] && sameGap(gaps[i], s) {
				picked[i] = true
				break
			}
		}
	}
	skipped = []string{}
	for i, g := range gaps {
		if !picked[i] {
			skipped = append(skipped, questionID(g))
		}
	}
	return selected, skipped, nil
}

func sameGap(a, b gap.Gap) bool {
	return a.QuestionID == b.QuestionID && a.QuestionText == b.QuestionText
}

// Creator files issues through a Tracker.
type Creator struct {
	tracker       Tracker
	checkExisting bool
}

// NewCreator creates a Creator. With checkExisting an issue whose title
// already exists is reused instead of filed again.
func NewCreator(tracker Tracker, checkExisting bool) *Creator {
	return &Creator{tracker: tracker, checkExisting: checkExisting}
}

// CreateAll files one issue per gap. An unavailable tracker marks every gap
// as failed.
func (c *Creator) CreateAll(ctx context.Context, gaps []gap.Gap) *Result {
	res := &Result{Created: []string{}, Skipped: []string{}, Errors: []string{}}
	if len(gaps) == 0 {
		return res
	}

	if err := c.tracker.Available(ctx); err != nil {
		logging.UserError("Issue tracker unavailable: %v", err)
		for _, g := range gaps {
			res.Errors = append(res.Errors, questionID(g))
		}
		return res
	}

	for _, g := range gaps {
		url, err := c.create(ctx, Build(g))
		if err != nil {
			logging.UserError("Failed to create issue for %s: %v", questionID(g), err)
			res.Errors = append(res.Errors, questionID(g))
			continue
		}
		logging.UserSuccess("Created: %s", url)
		res.Created = append(res.Created, url)
	}
	return res
}

func (c *Creator) create(ctx context.Context, issue Issue) (string, error) {
	if c.checkExisting {
		if url, ok := c.tracker.FindExisting(ctx, issue.Title); ok {
			logging.UserInfo("Issue already exists: %s", url)
			return url, nil
		}
	}
	url, err := c.tracker.Create(ctx, issue)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", fmt.Errorf("tracker returned no URL")
	}
	return url, nil
}

// commandPreviewer is implemented by trackers backed by a CLI.
type commandPreviewer interface {
	CreateCommand(issue Issue) system.Command
}

// DryRun writes the issues that would be created without filing them.
func DryRun(w io.Writer, gaps []gap.Gap, tracker Tracker) error {
	var b strings.Builder
	b.WriteString("=== DRY RUN: Issues that would be created ===\n")
	preview, _ := tracker.(commandPreviewer)

	for i, g := range gaps {
		issue := Build(g)
		fmt.Fprintf(&b, "\n--- Issue %d ---\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", issue.Title)
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(issue.Labels, ", "))
		if preview != nil {
			cmd := preview.CreateCommand(issue)
			fmt.Fprintf(&b, "Command: %s\n", logging.QuoteCommand(cmd.Name, cmd.Args...))
		}
		fmt.Fprintf(&b, "\nBody:\n%s\n", issue.Body)
		b.WriteString(strings.Repeat("-", 80) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
