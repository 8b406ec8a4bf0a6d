// Package config loads the optional forage-assist TOML configuration.
//
// The file lives at .forage-assist.toml in the project root unless --config
// names another path. Absent keys keep their defaults:
//
//	[premortem]
//	questions_dir = "questions"
//	min_questions = 3
//	max_questions = 5
//	min_score = 0.5
//	report_format = "markdown"
//
//	[issues]
//	mode = "selective"          # all | critical_high | selective | none
//	backend = "gh"              # gh | api
//	token_env = "GITHUB_TOKEN"
//	repository = "owner/name"   # required for the api backend
//	check_existing = true
//
//	[code_search]
//	enabled = false
//	max_terms = 5
//	max_hits = 10
//
//	[timeouts]
//	auth_status = "5s"
//	issue_search = "10s"
//	issue_create = "30s"
//	code_search = "5s"
package config
