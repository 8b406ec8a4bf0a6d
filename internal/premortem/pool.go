package premortem

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/forage-assist/internal/logging"
)

//go:embed schema/question_pool.json
var questionPoolSchema string

var poolSchema = jsonschema.MustCompileString("question_pool.json", questionPoolSchema)

// Capabilities reports which pool formats the loader understands.
type Capabilities struct {
	YAMLSupported bool `json:"yaml_supported"`
}

// PoolError reports a question file that failed schema validation.
type PoolError struct {
	File     string
	Problems []string
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("invalid question pool %s: %s", e.File, strings.Join(e.Problems, "; "))
}

var poolExtensions = []string{".yaml", ".yml", ".json"}

// GenericPool is the base name of the domain-independent question file.
const GenericPool = "generic"

// LoadQuestionPool reads dir/generic and dir/<domain> question files, trying
// the .yaml, .yml and .json extensions in that order. Missing files are
// skipped; a file that does not parse or fails validation is an error.
func LoadQuestionPool(dir, domain string) ([]Question, Capabilities, error) {
	caps := Capabilities{YAMLSupported: true}
	pool := []Question{}

	for _, base := range []string{GenericPool, domain} {
		if base == "" {
			continue
		}
		path, ok := findPoolFile(dir, base)
		if !ok {
			logging.Debug("no question file", "dir", dir, "name", base)
			continue
		}
		questions, err := loadPoolFile(path)
		if err != nil {
			return nil, caps, err
		}
		logging.Debug("loaded question pool", "path", path, "count", len(questions))
		pool = append(pool, questions...)
	}
	return pool, caps, nil
}

func findPoolFile(dir, base string) (string, bool) {
	for _, ext := range poolExtensions {
		path := filepath.Join(dir, base+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func loadPoolFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, &PoolError{File: path, Problems: []string{err.Error()}}
	}

	// Round-trip through JSON so the validator sees JSON value types.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, &PoolError{File: path, Problems: []string{err.Error()}}
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return nil, &PoolError{File: path, Problems: []string{err.Error()}}
	}

	if err := poolSchema.Validate(instance); err != nil {
		return nil, &PoolError{File: path, Problems: validationProblems(err)}
	}

	var parsed struct {
		Questions []Question `json:"questions"`
	}
	dec := json.NewDecoder(bytes.NewReader(normalized))
	if err := dec.Decode(&parsed); err != nil {
		return nil, &PoolError{File: path, Problems: []string{err.Error()}}
	}
	return parsed.Questions, nil
}

func validationProblems(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	var problems []string
	collectProblems(verr, &problems)
	if len(problems) == 0 {
		problems = append(problems, verr.Error())
	}
	return problems
}

func collectProblems(err *jsonschema.ValidationError, problems *[]string) {
	if len(err.Causes) == 0 && err.Message != "" {
		path := err.InstanceLocation
		if path == "" {
			path = "/"
		}
		*problems = append(*problems, fmt.Sprintf("%s: %s", path, err.Message))
	}
	for _, cause := range err.Causes {
		collectProblems(cause, problems)
	}
}
