package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/firefly-engineering/forage-assist/internal/logging"
	"github.com/firefly-engineering/forage-assist/internal/system"
)

// ErrNotRepository indicates the directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Error wraps a failed git or gh command with context.
type Error struct {
	Op     string // Operation that failed (e.g., "commit", "rollback")
	Cmd    string // Command that was run
	Output string // stderr, or stdout when stderr was empty
	Err    error  // Underlying error, if the process could not run
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Cmd + " failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// fallbackBases are tried after the caller's base branch.
var fallbackBases = []string{"origin/main", "origin/develop", "develop"}

// Status is a snapshot of the work tree.
type Status struct {
	Clean     bool     `json:"is_clean"`
	Branch    string   `json:"current_branch"`
	Staged    []string `json:"staged_files"`
	Modified  []string `json:"modified_files"`
	Untracked []string `json:"untracked_files"`
}

// Checkpoint is the outcome of CreateCheckpoint.
type Checkpoint struct {
	Created bool   `json:"created"`
	Hash    string `json:"hash,omitempty"`
	Message string `json:"message"`
}

// Repo runs git commands in one directory.
type Repo struct {
	dir  string
	exec system.CommandExecutor
}

// Option configures a Repo.
type Option func(*Repo)

// WithExecutor sets the command executor.
func WithExecutor(exec system.CommandExecutor) Option {
	return func(r *Repo) {
		r.exec = exec
	}
}

// New creates a Repo rooted at dir.
func New(dir string, opts ...Option) *Repo {
	r := &Repo{dir: dir, exec: system.DefaultExecutor()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the directory commands run in.
func (r *Repo) Dir() string {
	return r.dir
}

func (r *Repo) run(ctx context.Context, name string, args ...string) (*system.Result, error) {
	return r.exec.Run(ctx, system.Command{Name: name, Args: args, Dir: r.dir})
}

// git runs a git command and returns trimmed stdout when it succeeds.
func (r *Repo) git(ctx context.Context, args ...string) (string, bool) {
	res, err := r.run(ctx, "git", args...)
	if err != nil {
		logging.Debug("git failed to start", "args", args, "error", err)
		return "", false
	}
	if !res.Success() {
		return "", false
	}
	return strings.TrimSpace(res.Stdout), true
}

func (r *Repo) fail(op string, args []string, res *system.Result, err error) *Error {
	e := &Error{Op: op, Cmd: logging.QuoteCommand("git", args...), Err: err}
	if res != nil {
		e.Output = strings.TrimSpace(res.Stderr)
		if e.Output == "" {
			e.Output = strings.TrimSpace(res.Stdout)
		}
	}
	return e
}

// mutate runs a git command that changes state and reports failures as *Error.
func (r *Repo) mutate(ctx context.Context, op string, args ...string) (string, error) {
	res, err := r.run(ctx, "git", args...)
	if err != nil || !res.Success() {
		return "", r.fail(op, args, res, err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// IsRepository reports whether dir is inside a git work tree. A missing git
// binary counts as not a repository.
func (r *Repo) IsRepository(ctx context.Context) bool {
	_, ok := r.git(ctx, "rev-parse", "--is-inside-work-tree")
	return ok
}

// Status returns the work tree status. Outside a repository it returns a
// clean, empty status.
func (r *Repo) Status(ctx context.Context) *Status {
	st := &Status{Staged: []string{}, Modified: []string{}, Untracked: []string{}}
	if !r.IsRepository(ctx) {
		st.Clean = true
		return st
	}

	st.Branch, _ = r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	st.Staged = r.fileList(ctx, "diff", "--cached", "--name-only")
	st.Modified = r.fileList(ctx, "diff", "--name-only")
	st.Untracked = r.fileList(ctx, "ls-files", "--others", "--exclude-standard")
	st.Clean = len(st.Staged) == 0 && len(st.Modified) == 0 && len(st.Untracked) == 0
	return st
}

func (r *Repo) fileList(ctx context.Context, args ...string) []string {
	out, ok := r.git(ctx, args...)
	if !ok {
		return []string{}
	}
	return splitLines(out)
}

// Commit stages the given files, if any, and commits with message.
func (r *Repo) Commit(ctx context.Context, message string, files ...string) error {
	if !r.IsRepository(ctx) {
		return ErrNotRepository
	}

	for _, f := range files {
		if _, err := r.mutate(ctx, "add "+f, "add", f); err != nil {
			return err
		}
	}

	_, err := r.mutate(ctx, "commit", "commit", "-m", message)
	return err
}

// ChangedFiles lists files that differ from base, trying a few common base
// branches before falling back to staged and modified files.
func (r *Repo) ChangedFiles(ctx context.Context, base string) []string {
	if !r.IsRepository(ctx) {
		return []string{}
	}

	bases := fallbackBases
	if base != "" {
		bases = append([]string{base}, fallbackBases...)
	}
	for _, b := range bases {
		if out, ok := r.git(ctx, "diff", "--name-only", b); ok && out != "" {
			return splitLines(out)
		}
	}

	st := r.Status(ctx)
	return dedupe(append(append([]string{}, st.Staged...), st.Modified...))
}

// RecentCommitFiles lists files touched by the last n commits.
func (r *Repo) RecentCommitFiles(ctx context.Context, n int) []string {
	if n < 1 {
		n = 1
	}
	if !r.IsRepository(ctx) {
		return []string{}
	}
	out, ok := r.git(ctx, "diff", "--name-only", fmt.Sprintf("HEAD~%d", n))
	if !ok {
		return []string{}
	}
	return splitLines(out)
}

// CreateCheckpoint commits every pending change as "checkpoint: <description>".
// A clean tree is a successful no-op.
func (r *Repo) CreateCheckpoint(ctx context.Context, description string) (*Checkpoint, error) {
	st := r.Status(ctx)
	if st.Clean {
		return &Checkpoint{Message: "No changes to checkpoint"}, nil
	}

	if _, err := r.mutate(ctx, "stage", "add", "-A"); err != nil {
		return nil, err
	}

	msg := "checkpoint: " + description
	if err := r.Commit(ctx, msg); err != nil {
		return nil, err
	}

	hash, _ := r.git(ctx, "rev-parse", "HEAD")
	return &Checkpoint{Created: true, Hash: hash, Message: msg}, nil
}

// Rollback hard-resets the work tree to hash.
func (r *Repo) Rollback(ctx context.Context, hash string) error {
	_, err := r.mutate(ctx, "rollback", "reset", "--hard", hash)
	return err
}

// CurrentPRNumber asks gh for the pull request of the current branch.
func (r *Repo) CurrentPRNumber(ctx context.Context) (int, bool) {
	res, err := r.run(ctx, "gh", "pr", "view", "--json", "number", "--jq", ".number")
	if err != nil || !res.Success() {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
