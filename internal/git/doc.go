// Package git wraps the git CLI for status, commit and checkpoint helpers.
//
// Read-only queries never fail: outside a repository, or when git is not
// installed, they return empty values. Mutating operations (Commit,
// CreateCheckpoint, Rollback) return *Error carrying the command output.
// Local git calls run without a timeout.
//
//	repo := git.New(root)
//	st := repo.Status(ctx)
//	cp, err := repo.CreateCheckpoint(ctx, "before refactor")
package git
