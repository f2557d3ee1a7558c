package domain

import "io"

// Command is an external process invocation issued by a builder.
type Command struct {
	// Label identifies the command in logs, usually the builder uid.
	Label string
	// Args holds the executable followed by its arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env overrides entries of the process environment.
	Env map[string]string
	// Output optionally receives a copy of stdout and stderr.
	Output io.Writer
}
