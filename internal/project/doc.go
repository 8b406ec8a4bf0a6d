// Package project detects a repository's language, project type, frameworks
// and tooling from its manifest files.
//
// Detection runs an ordered list of ecosystem detectors (node, go, python,
// rust). Every detector that matches contributes its frameworks and tools;
// project type and language come from the last match unless FirstMatchWins
// is selected.
//
//	info := project.Detect(root)
//	layer := project.Layer("app/page.tsx", info)
package project
