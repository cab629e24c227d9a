package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CLI runs prio commands against a temp work directory.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a test CLI with a fresh temp directory and an empty env.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{t: t, Dir: t.TempDir(), Env: map[string]string{}}
}

// Run executes prio with args and returns stdout, stderr and the exit code.
// "prio" and "--cwd" are added automatically.
func (c *CLI) Run(args ...string) (string, string, int) {
	return c.RunWithInput("", args...)
}

// RunWithInput is [CLI.Run] with stdin.
func (c *CLI) RunWithInput(stdin string, args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"prio", "--cwd", c.Dir}, args...)
	code := Run(strings.NewReader(stdin), &outBuf, &errBuf, fullArgs, c.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun fails the test if the command exits non-zero. Returns trimmed stdout.
func (c *CLI) MustRun(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code != 0 {
		c.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail fails the test if the command succeeds or writes to stdout.
// Returns trimmed stderr.
func (c *CLI) MustFail(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code == 0 {
		c.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		c.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// BacklogPath returns the default backlog path inside Dir.
func (c *CLI) BacklogPath() string {
	return filepath.Join(c.Dir, "roadmap", "implementation-order.json")
}

// WriteFile writes content to a path relative to Dir.
func (c *CLI) WriteFile(rel, content string) {
	c.t.Helper()

	path := filepath.Join(c.Dir, rel)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.t.Fatalf("creating dir for %s: %v", rel, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		c.t.Fatalf("writing %s: %v", rel, err)
	}
}

// ReadFile returns the content of a path relative to Dir.
func (c *CLI) ReadFile(rel string) string {
	c.t.Helper()

	data, err := os.ReadFile(filepath.Join(c.Dir, rel))
	if err != nil {
		c.t.Fatalf("reading %s: %v", rel, err)
	}

	return string(data)
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}
