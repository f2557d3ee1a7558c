// Package shell provides the shell executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

var _ ports.Executor = (*Executor)(nil)

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the command with the process environment overlaid by cmd.Env.
// Output goes to cmd.Output when set and is logged line by line otherwise.
func (e *Executor) Execute(ctx context.Context, cmd *domain.Command) error {
	if len(cmd.Args) == 0 {
		return nil
	}

	name := cmd.Args[0]
	cmdEnv := resolveEnvironment(os.Environ(), cmd.Env)

	// Resolve the executable path using the new environment's PATH
	executable := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // user provided command
	// Restore the original command name in Args[0]
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = cmdEnv

	var stdout, stderr io.Writer
	if cmd.Output != nil {
		out := &syncWriter{w: cmd.Output}
		stdout, stderr = out, out
	} else {
		lw := &logWriter{logger: e.logger, label: cmd.Label}
		ew := &logWriter{logger: e.logger, label: cmd.Label, warn: true}
		defer lw.Flush()
		defer ew.Flush()
		stdout, stderr = lw, ew
	}
	c.Stdout = stdout
	c.Stderr = stderr

	if err := c.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "exit_code", exitCode)
		return zerr.With(wrapped, "command", name)
	}
	return nil
}

// LookPath resolves name using the process PATH.
func (e *Executor) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		if err := findExecutable(name); err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrExecutableNotFound.Error()), "executable", name)
		}
		return name, nil
	}
	p, err := lookPath(name, os.Environ())
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrExecutableNotFound.Error()), "executable", name)
	}
	return p, nil
}

// syncWriter serializes writes from stdout and stderr.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// logWriter buffers partial writes and logs complete lines.
type logWriter struct {
	mu     sync.Mutex
	logger ports.Logger
	label  string
	warn   bool
	buf    bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line, keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}

// Flush logs any trailing partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *logWriter) emit(line string) {
	if w.warn {
		w.logger.Warn(line, "builder", w.label)
		return
	}
	w.logger.Info(line)
}

// resolveEnvironment overlays overrides on the system environment. The
// result is sorted for reproducible invocations.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
