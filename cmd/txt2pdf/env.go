package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-txt2pdf/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string

	// Config and Logger are set by the root command before any subcommand
	// runs.
	Config *config.Config
	Logger zerolog.Logger
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
		Config:  config.DefaultConfig(),
		Logger:  zerolog.Nop(),
	}
}
