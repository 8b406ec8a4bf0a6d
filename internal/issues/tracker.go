package issues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// Tracker files issues somewhere.
type Tracker interface {
	// Available returns an error when the tracker cannot be used.
	Available(ctx context.Context) error
	// FindExisting returns the URL of an open issue matching title.
	FindExisting(ctx context.Context, title string) (string, bool)
	// Create files issue and returns its URL.
	Create(ctx context.Context, issue Issue) (string, error)
}

// Timeouts bound the gh calls.
type Timeouts struct {
	AuthStatus  time.Duration
	IssueSearch time.Duration
	IssueCreate time.Duration
}

// DefaultTimeouts are 5s for auth, 10s for search and 30s for creation.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		AuthStatus:  5 * time.Second,
		IssueSearch: 10 * time.Second,
		IssueCreate: 30 * time.Second,
	}
}

// GHTracker files issues with the gh CLI.
type GHTracker struct {
	dir      string
	exec     system.CommandExecutor
	timeouts Timeouts
}

// GHOption configures a GHTracker.
type GHOption func(*GHTracker)

// WithExecutor sets the command executor.
func WithExecutor(exec system.CommandExecutor) GHOption {
	return func(t *GHTracker) { t.exec = exec }
}

// WithTimeouts overrides the gh timeouts.
func WithTimeouts(to Timeouts) GHOption {
	return func(t *GHTracker) { t.timeouts = to }
}

// NewGHTracker creates a tracker running gh in dir.
func NewGHTracker(dir string, opts ...GHOption) *GHTracker {
	t := &GHTracker{dir: dir, exec: system.DefaultExecutor(), timeouts: DefaultTimeouts()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *GHTracker) run(ctx context.Context, timeout time.Duration, args ...string) (*system.Result, error) {
	logging.Command(t.dir, "gh", args...)
	return t.exec.Run(ctx, system.Command{Name: "gh", Args: args, Dir: t.dir, Timeout: timeout})
}

// Available checks that gh is installed and authenticated.
func (t *GHTracker) Available(ctx context.Context) error {
	res, err := t.run(ctx, t.timeouts.AuthStatus, "auth", "status")
	if err != nil {
		return fmt.Errorf("gh CLI not available: %w", err)
	}
	if !res.Success() {
		return errors.New("gh CLI not authenticated")
	}
	return nil
}

// FindExisting searches issues for title. Malformed output finds nothing.
func (t *GHTracker) FindExisting(ctx context.Context, title string) (string, bool) {
	res, err := t.run(ctx, t.timeouts.IssueSearch, "issue", "list", "--search", title, "--json", "url,title")
	if err != nil || !res.Success() {
		return "", false
	}
	var found []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &found); err != nil {
		logging.Debug("unexpected gh issue list output", "error", err)
		return "", false
	}
	if len(found) == 0 || found[0].URL == "" {
		return "", false
	}
	return found[0].URL, true
}

// CreateCommand is the gh invocation that files issue.
func (t *GHTracker) CreateCommand(issue Issue) system.Command {
	args := []string{"issue", "create", "--title", issue.Title, "--body", issue.Body}
	for _, l := range issue.Labels {
		args = append(args, "--label", l)
	}
	return system.Command{Name: "gh", Args: args, Dir: t.dir, Timeout: t.timeouts.IssueCreate}
}

// Create files issue with gh and returns the URL gh prints.
func (t *GHTracker) Create(ctx context.Context, issue Issue) (string, error) {
	cmd := t.CreateCommand(issue)
	res, err := t.run(ctx, cmd.Timeout, cmd.Args...)
	if err != nil {
		return "", fmt.Errorf("gh issue create: %w", err)
	}
	if !res.Success() {
		return "", fmt.Errorf("gh issue create: %s", strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}

// APITracker files issues through the GitHub REST API.
type APITracker struct {
	client *github.Client
	owner  string
	repo   string
}

// NewAPITracker creates a tracker for owner/repo authenticated with token.
func NewAPITracker(ctx context.Context, token, owner, repo string) (*APITracker, error) {
	if token == "" {
		return nil, errors.New("GitHub token is required")
	}
	if owner == "" || repo == "" {
		return nil, errors.New("owner and repo are required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &APITracker{
		client: github.NewClient(oauth2.NewClient(ctx, ts)),
		owner:  owner,
		repo:   repo,
	}, nil
}

// WithBaseURL points the tracker at another API endpoint, such as GitHub
// Enterprise. The URL must end with a slash.
func (t *APITracker) WithBaseURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	t.client.BaseURL = u
	return nil
}

// Available is always nil; credentials are checked by NewAPITracker.
func (t *APITracker) Available(context.Context) error {
	return nil
}

// FindExisting searches open issues of the repository by title.
func (t *APITracker) FindExisting(ctx context.Context, title string) (string, bool) {
	q := fmt.Sprintf("repo:%s/%s is:issue is:open in:title %q", t.owner, t.repo, title)
	res, _, err := t.client.Search.Issues(ctx, q, &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}})
	if err != nil {
		logging.Debug("issue search failed", "error", err)
		return "", false
	}
	if len(res.Issues) == 0 {
		return "", false
	}
	return res.Issues[0].GetHTMLURL(), true
}

// Create files issue and returns its HTML URL.
func (t *APITracker) Create(ctx context.Context, issue Issue) (string, error) {
	labels := issue.Labels
	created, _, err := t.client.Issues.Create(ctx, t.owner, t.repo, &github.IssueRequest{
		Title:  github.String(issue.Title),
		Body:   github.String(issue.Body),
		Labels: &labels,
	})
	if err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	return created.GetHTMLURL(), nil
}
