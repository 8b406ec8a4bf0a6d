// Package testutil provides a temporary project environment for command tests.
//
// NewTestEnv creates a temporary project root wired to a
// system.MockExecutor and the default configuration:
//
//	env := testutil.NewTestEnv(t)
//	env.WebProject()
//	env.UseQuestionPools()
//	env.Exec.AddResponse("gh auth status", "")
//
// Fixtures are embedded from fixtures/: question pools under
// fixtures/questions and a premortem session in fixtures/session.json.
//
//	data := testutil.MustFixture(t, "session.json")
package testutil
