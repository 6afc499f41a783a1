// Package shell runs the external stage collaborators and lint tools.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Command is one invocation of an external tool.
type Command struct {
	Argv  []string
	Dir   string
	Env   map[string]string
	Stdin []byte
}

// Runner starts external tools with a filtered environment.
type Runner struct {
	logger ports.Logger
	sysEnv func() []string
}

// NewRunner creates a Runner inheriting the allow-listed process environment.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger, sysEnv: os.Environ}
}

// Output runs cmd with piped stdio and returns what it printed on stdout.
// A non-zero exit wraps ErrCommandFailed and carries stderr as metadata.
func (r *Runner) Output(ctx context.Context, cmd Command) ([]byte, error) {
	c, err := r.prepare(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	if err := c.Run(); err != nil {
		return stdout.Bytes(), commandError(cmd.Argv, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Terminal runs cmd under a pseudo-terminal so tools keep their colour
// output, copies everything it prints to out and logs it line by line at
// debug level.
func (r *Runner) Terminal(ctx context.Context, cmd Command, out io.Writer) error {
	c, err := r.prepare(ctx, cmd)
	if err != nil {
		return err
	}

	ptmx, err := pty.Start(c)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	log := &logWriter{logger: r.logger}
	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		defer func() { _ = log.Close() }()

		// The pty merges stdout and stderr. Reading ends with EIO once the
		// child exits.
		_, _ = io.Copy(io.MultiWriter(log, out), ptmx)
	}()

	err = c.Wait()
	<-ioDone

	if err != nil {
		return commandError(cmd.Argv, err, "")
	}
	return nil
}

func (r *Runner) prepare(ctx context.Context, cmd Command) (*exec.Cmd, error) {
	if len(cmd.Argv) == 0 {
		return nil, zerr.Wrap(domain.ErrCommandFailed, "empty command")
	}

	name := cmd.Argv[0]
	env := resolveEnvironment(r.sysEnv(), cmd.Env)

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Argv[1:]...) //nolint:gosec // configured command
	if len(c.Args) > 0 {
		c.Args[0] = name
	}
	c.Dir = cmd.Dir
	c.Env = env
	return c, nil
}

func commandError(argv []string, err error, stderr string) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	wrapped := zerr.With(zerr.Wrap(domain.ErrCommandFailed, err.Error()), "command", strings.Join(argv, " "))
	wrapped = zerr.With(wrapped, "exit_code", exitCode)
	if s := strings.TrimSpace(stderr); s != "" {
		wrapped = zerr.With(wrapped, "stderr", s)
	}
	return wrapped
}

type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	// Scan for newlines
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r. Remove it.
	w.logger.Debug(strings.TrimSuffix(string(line), "\r"))
}

// allowListedEnvVars are the system environment variables tools inherit.
// The KILN_* and NODE_ENV variables are inherited because the fingerprint
// already accounts for them.
var allowListedEnvVars = map[string]struct{}{
	"HOME":             {},
	"TERM":             {},
	"USER":             {},
	"PATH":             {},
	"NODE_ENV":         {},
	"NODE_OPTIONS":     {},
	"KILN_PRODUCTION":  {},
	"KILN_VERBOSE":     {},
	"KILN_SOURCE_ROOT": {},
	"KILN_DEST_ROOT":   {},
	"KILN_LINT":        {},
	"KILN_LINT_CONFIG": {},
	"KILN_TSCONFIG":    {},
	"KILN_ALIASES":     {},
}

// resolveEnvironment filters sysEnv through the allow-list and applies
// the command's own variables on top.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}

	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
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
