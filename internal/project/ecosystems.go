package project

import (
	"encoding/json"
	"strings"

	"github.com/BurntSushi/toml"
)

type nodeDetector struct{}

func (nodeDetector) Name() string { return "node" }

func (nodeDetector) Detect(root string) (*Detection, bool) {
	raw, ok := readFile(root, "package.json")
	if !ok {
		return nil, false
	}

	det := &Detection{Language: "javascript"}
	if fileExists(root, "tsconfig.json") {
		det.Language = "typescript"
	}

	switch {
	case fileExists(root, "pnpm-lock.yaml"):
		det.PackageManager = "pnpm"
	case fileExists(root, "yarn.lock"):
		det.PackageManager = "yarn"
	case fileExists(root, "bun.lockb"):
		det.PackageManager = "bun"
	default:
		det.PackageManager = "npm"
	}

	deps, err := packageDependencies([]byte(raw))
	if err != nil {
		return det, true
	}

	switch {
	case deps["next"]:
		det.Frameworks = append(det.Frameworks, "nextjs")
		det.ProjectType = "nextjs-frontend"
		if deps["prisma"] {
			det.ProjectType = "nextjs-fullstack"
		}
	case deps["react"]:
		det.Frameworks = append(det.Frameworks, "react")
		det.ProjectType = "react-app"
	case deps["@nestjs/core"]:
		det.Frameworks = append(det.Frameworks, "nestjs")
		det.ProjectType = "nestjs-api"
	}

	for _, tool := range []string{"prisma", "zod", "neverthrow", "eslint", "prettier"} {
		if deps[tool] {
			det.Tools = append(det.Tools, tool)
		}
	}

	return det, true
}

// PackageDependencyNames returns the merged dependency and devDependency
// names of a package.json document.
func PackageDependencyNames(data []byte) ([]string, error) {
	deps, err := packageDependencies(data)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	return names, nil
}

func packageDependencies(data []byte) (map[string]bool, error) {
	var pkg struct {
		Dependencies    map[string]any `json:"dependencies"`
		DevDependencies map[string]any `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	deps := make(map[string]bool, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		deps[name] = true
	}
	for name := range pkg.DevDependencies {
		deps[name] = true
	}
	return deps, nil
}

type goDetector struct{}

func (goDetector) Name() string { return "go" }

var goFrameworks = []struct {
	module    string
	framework string
}{
	{"gin-gonic/gin", "gin"},
	{"gorilla/mux", "gorilla-mux"},
	{"labstack/echo", "echo"},
	{"spf13/cobra", "cobra"},
}

func (goDetector) Detect(root string) (*Detection, bool) {
	if !fileExists(root, "go.mod") {
		return nil, false
	}

	det := &Detection{
		ProjectType: "go-application",
		Language:    "go",
		Frameworks:  []string{"go"},
	}

	goMod, _ := readFile(root, "go.mod")
	for _, fw := range goFrameworks {
		if strings.Contains(goMod, fw.module) {
			det.Frameworks = append(det.Frameworks, fw.framework)
		}
	}
	return det, true
}

type pythonDetector struct{}

func (pythonDetector) Name() string { return "python" }

func (pythonDetector) Detect(root string) (*Detection, bool) {
	hasPyproject := fileExists(root, "pyproject.toml")
	if !hasPyproject && !fileExists(root, "requirements.txt") {
		return nil, false
	}

	det := &Detection{
		ProjectType: "python-application",
		Language:    "python",
		Frameworks:  []string{"python"},
	}

	switch {
	case fileExists(root, "manage.py"):
		det.Frameworks = append(det.Frameworks, "django")
		det.ProjectType = "django-app"
	case fileExists(root, "app.py") || fileExists(root, "application.py"):
		det.Frameworks = append(det.Frameworks, "flask")
		det.ProjectType = "flask-app"
	}

	deps := pythonDependencies(root)
	for _, fw := range []string{"django", "flask", "fastapi"} {
		if deps[fw] {
			det.Frameworks = appendUnique(det.Frameworks, fw)
		}
	}
	return det, true
}

type pyproject struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func pythonDependencies(root string) map[string]bool {
	deps := make(map[string]bool)

	if raw, ok := readFile(root, "pyproject.toml"); ok {
		var pp pyproject
		if _, err := toml.Decode(raw, &pp); err == nil {
			for _, spec := range pp.Project.Dependencies {
				deps[requirementName(spec)] = true
			}
			for name := range pp.Tool.Poetry.Dependencies {
				deps[strings.ToLower(name)] = true
			}
		}
	}

	if raw, ok := readFile(root, "requirements.txt"); ok {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
				continue
			}
			deps[requirementName(line)] = true
		}
	}

	return deps
}

// requirementName extracts the distribution name from a PEP 508 requirement.
func requirementName(spec string) string {
	spec = strings.TrimSpace(spec)
	if i := strings.IndexAny(spec, "=<>~![; "); i >= 0 {
		spec = spec[:i]
	}
	return strings.ToLower(spec)
}

type rustDetector struct{}

func (rustDetector) Name() string { return "rust" }

var rustFrameworks = []struct {
	crate     string
	framework string
}{
	{"actix-web", "actix"},
	{"axum", "axum"},
	{"rocket", "rocket"},
	{"tokio", "tokio"},
}

func (rustDetector) Detect(root string) (*Detection, bool) {
	raw, ok := readFile(root, "Cargo.toml")
	if !ok {
		return nil, false
	}

	det := &Detection{
		ProjectType:    "rust-application",
		Language:       "rust",
		Frameworks:     []string{"rust"},
		PackageManager: "cargo",
	}

	var manifest struct {
		Dependencies map[string]any `toml:"dependencies"`
	}
	if _, err := toml.Decode(raw, &manifest); err != nil {
		return det, true
	}
	for _, fw := range rustFrameworks {
		if _, ok := manifest.Dependencies[fw.crate]; ok {
			det.Frameworks = append(det.Frameworks, fw.framework)
		}
	}
	return det, true
}
