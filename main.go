package main

import (
	"os"

	"github.com/firefly-engineering/forage-assist/cmd"
	"github.com/firefly-engineering/forage-assist/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
