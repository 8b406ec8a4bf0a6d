// Package app provides the application context for forage-assist.
//
// App holds the project root, the loaded configuration and the command
// executor, and hands out clients wired with them:
//
//	a, err := app.Load(root, configFlag)
//	st := a.Repo().Status(ctx)
//	tracker, err := a.Tracker(ctx)
//
// Tests inject a system.MockExecutor and a custom config:
//
//	a := app.New(
//	    app.WithRoot(t.TempDir()),
//	    app.WithExecutor(system.NewMockExecutor()),
//	)
package app
