// Package premortem analyses a project description and picks the planning
// questions most worth asking before implementation starts.
//
// AnalyzeContext derives a ProjectContext (domain, maturity, scale and tech
// stack) from free text, falling back to the project's documentation when
// no text is given. LoadQuestionPool reads the generic and domain question
// files, validating each against an embedded JSON Schema, and
// SelectTopQuestions ranks the pool against the context.
//
//	pctx := premortem.AnalyzeContext(root, description, files)
//	pool, _, err := premortem.LoadQuestionPool(dir, pctx.Domain)
//	selected := premortem.SelectTopQuestions(pool, pctx, premortem.DefaultSelectOptions())
package premortem
