package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gitdrip/gitdrip/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	cmd := NewRootCommand(versionInfo)
	if err := cmd.Execute(); err != nil {
		// Context cancellation is the normal signal shutdown path
		if errors.Is(err, context.Canceled) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}
