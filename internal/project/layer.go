package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Architectural layers reported by Layer.
const (
	LayerAction          = "action"
	LayerService         = "service"
	LayerServerComponent = "server_component"
	LayerClientComponent = "client_component"
	LayerComponent       = "component"
	LayerUtility         = "utility"
	LayerTest            = "test"
	LayerAPI             = "api"
	LayerModel           = "model"
	LayerRepository      = "repository"
)

// Layer classifies filePath into an architectural layer. Next.js projects get
// the finer-grained layers first; paths are matched on their directory names.
func Layer(filePath string, info *Info) string {
	parts := strings.Split(filepath.ToSlash(filePath), "/")
	has := func(names ...string) bool {
		for _, p := range parts {
			for _, n := range names {
				if p == n {
					return true
				}
			}
		}
		return false
	}

	if info != nil && info.HasFramework("nextjs") {
		switch {
		case has("actions"):
			return LayerAction
		case has("services"):
			return LayerService
		case has("app", "pages"):
			if !isTypeScript(filePath) {
				break
			}
			if hasUseClient(resolve(filePath, info)) {
				return LayerClientComponent
			}
			return LayerServerComponent
		case has("components"):
			return LayerComponent
		case has("lib", "utils"):
			return LayerUtility
		}
	}

	switch {
	case has("test", "tests", "__tests__"):
		return LayerTest
	case has("api", "routes"):
		return LayerAPI
	case has("models", "entities"):
		return LayerModel
	case has("repositories", "dao"):
		return LayerRepository
	}
	return Unknown
}

func isTypeScript(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".ts" || ext == ".tsx"
}

func resolve(path string, info *Info) string {
	if filepath.IsAbs(path) || info.RootDir == "" {
		return path
	}
	return filepath.Join(info.RootDir, path)
}

// hasUseClient reports whether the file carries a "use client" directive.
// Unreadable files are treated as server components.
func hasUseClient(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	content := string(data)
	return strings.Contains(content, `'use client'`) || strings.Contains(content, `"use client"`)
}
