package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/forage-assist/internal/errors"
	"github.com/firefly-engineering/forage-assist/internal/logging"
)

// marshalJSON renders v with two-space indentation and without HTML escaping.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// writeOutput writes content to path, or to the command's stdout when path
// is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if path == "" {
		_, err := cmd.OutOrStdout().Write([]byte(content))
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.IOError(path, err)
	}
	logging.Debug("output written", "path", path)
	return nil
}

// writeJSON marshals v and writes it like writeOutput.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to encode output", err)
	}
	return writeOutput(cmd, path, string(data))
}

// readInput reads a required input document.
func readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.InvalidInput("an input file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	return data, nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// quietUserInfo routes info and success lines to stderr while a command
// writes a document to stdout. The returned func restores the defaults.
func quietUserInfo(cmd *cobra.Command) func() {
	logging.SetUserOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	return func() { logging.SetUserOutput(nil, nil) }
}
