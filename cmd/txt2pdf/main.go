// Command txt2pdf converts plain-text files with right-to-left runs and
// pipe tables into paged PDF, HTML or Chrome-printed PDF parts.
package main

import (
	"context"
	"os"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], DefaultEnv()))
}
