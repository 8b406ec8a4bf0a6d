package ci

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// DefaultFields are requested from `gh pr checks --json` first.
var DefaultFields = []string{"name", "state", "conclusion", "detailsUrl", "startedAt", "completedAt"}

// FallbackFields are intersected with the fields gh reports as available
// when the default request is rejected.
var FallbackFields = []string{
	"name", "state", "conclusion", "detailsUrl", "link", "bucket", "workflow", "startedAt", "completedAt",
}

var (
	failureConclusions = map[string]bool{"failure": true, "cancelled": true, "timed_out": true, "action_required": true}
	failureStates      = map[string]bool{"failure": true, "error": true, "cancelled": true, "timed_out": true, "action_required": true}
	failureBuckets     = map[string]bool{"fail": true}
)

// Check is a single PR check as reported by gh.
type Check struct {
	Name        string `json:"name"`
	State       string `json:"state,omitempty"`
	Conclusion  string `json:"conclusion,omitempty"`
	DetailsURL  string `json:"detailsUrl,omitempty"`
	Link        string `json:"link,omitempty"`
	Bucket      string `json:"bucket,omitempty"`
	Workflow    string `json:"workflow,omitempty"`
	StartedAt   string `json:"startedAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// IsFailed reports whether the check's state, conclusion or bucket is a
// failure value.
func IsFailed(c Check) bool {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return failureStates[norm(c.State)] ||
		failureConclusions[norm(c.Conclusion)] ||
		failureBuckets[norm(c.Bucket)]
}

// Client queries CI state through the gh CLI.
type Client struct {
	dir  string
	exec system.CommandExecutor
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor sets the command executor.
func WithExecutor(exec system.CommandExecutor) Option {
	return func(c *Client) {
		c.exec = exec
	}
}

// New creates a Client that runs gh in dir.
func New(dir string, opts ...Option) *Client {
	c := &Client{dir: dir, exec: system.DefaultExecutor()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) gh(ctx context.Context, args ...string) (*system.Result, bool) {
	res, err := c.exec.Run(ctx, system.Command{Name: "gh", Args: args, Dir: c.dir})
	if err != nil {
		logging.Debug("gh failed to start", "args", args, "error", err)
		return res, false
	}
	return res, res.Success()
}

// PRChecks lists the checks of a pull request. When gh rejects the default
// field list it retries with the fields it reports as available. Any failure
// yields an empty list.
func (c *Client) PRChecks(ctx context.Context, pr int) []Check {
	args := checksArgs(pr, DefaultFields)
	res, ok := c.gh(ctx, args...)

	if !ok {
		if res == nil {
			return []Check{}
		}
		msg := res.Stderr
		if msg == "" {
			msg = res.Stdout
		}
		available := ParseAvailableFields(msg)
		if len(available) == 0 {
			return []Check{}
		}
		selected := intersect(FallbackFields, available)
		if len(selected) == 0 {
			selected = available
		}
		logging.Debug("retrying gh pr checks", "fields", selected)
		if res, ok = c.gh(ctx, checksArgs(pr, selected)...); !ok {
			return []Check{}
		}
	}

	return decodeChecks(res.Stdout)
}

func checksArgs(pr int, fields []string) []string {
	return []string{"pr", "checks", strconv.Itoa(pr), "--json", strings.Join(fields, ",")}
}

func intersect(ordered, available []string) []string {
	set := make(map[string]bool, len(available))
	for _, f := range available {
		set[f] = true
	}
	var out []string
	for _, f := range ordered {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}

// decodeChecks accepts a bare list or an object wrapping the list under
// checks, items, nodes or results. Non-object entries are skipped.
func decodeChecks(stdout string) []Check {
	data := strings.TrimSpace(stdout)
	if data == "" {
		data = "[]"
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal([]byte(data), &wrapped); err != nil {
			return []Check{}
		}
		found := false
		for _, key := range []string{"checks", "items", "nodes", "results"} {
			raw, ok := wrapped[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &items); err == nil {
				found = true
				break
			}
		}
		if !found {
			return []Check{}
		}
	}

	checks := make([]Check, 0, len(items))
	for _, raw := range items {
		var c Check
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		if c.DetailsURL == "" && c.Link != "" {
			c.DetailsURL = c.Link
		}
		checks = append(checks, c)
	}
	return checks
}

// FailedChecks returns the failing checks of a pull request.
func (c *Client) FailedChecks(ctx context.Context, pr int) []Check {
	failed := []Check{}
	for _, check := range c.PRChecks(ctx, pr) {
		if IsFailed(check) {
			failed = append(failed, check)
		}
	}
	return failed
}

// RunLogs returns the full log of a workflow run, or "" when unavailable.
func (c *Client) RunLogs(ctx context.Context, runID string) string {
	if runID == "" {
		return ""
	}
	res, ok := c.gh(ctx, "run", "view", runID, "--log")
	if !ok {
		return ""
	}
	return res.Stdout
}

var (
	inlineFieldsPattern = regexp.MustCompile(`(?i)available fields:[ \t]*([^\n]+)`)
	runIDPattern        = regexp.MustCompile(`/runs/(\d+)`)
)

// ParseAvailableFields extracts the field names gh lists after "available
// fields:", either inline and comma separated or one per following line.
func ParseAvailableFields(message string) []string {
	if message == "" {
		return nil
	}

	if m := inlineFieldsPattern.FindStringSubmatch(message); m != nil {
		var fields []string
		for _, f := range strings.Split(m[1], ",") {
			if f = strings.Trim(strings.TrimSpace(f), ","); f != "" {
				fields = append(fields, f)
			}
		}
		return fields
	}

	var fields []string
	collecting := false
	for _, line := range strings.Split(message, "\n") {
		if strings.Contains(strings.ToLower(line), "available fields:") {
			collecting = true
			continue
		}
		if !collecting {
			continue
		}
		if f := strings.TrimSpace(line); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// ExtractRunID returns the workflow run ID in a GitHub Actions URL.
func ExtractRunID(detailsURL string) (string, bool) {
	m := runIDPattern.FindStringSubmatch(detailsURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
