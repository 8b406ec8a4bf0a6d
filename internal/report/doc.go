// Package report renders premortem sessions as markdown or JSON.
//
// A session carries the project context together with gap analysis results,
// ready-made findings, or hand-written answers to the selected questions.
// JSON output reproduces the session document exactly; markdown output has a
// fixed section order ending in a short list of next steps.
package report
