// Package gap infers answers to premortem questions from a project's own
// documentation and classifies how well each question is already covered.
//
// For every question the Analyzer collects relevance-scored paragraphs from
// the candidate files (README, agent notes, steering and design documents,
// package manifests), turns them into an AutoAnswer, derives a coverage
// figure and a Status, and attaches a recommendation. File contents are
// read once per Analyzer.
package gap
