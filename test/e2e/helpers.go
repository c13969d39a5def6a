//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/cloo-solutions/kbdocs/internal/testutil"
)

// E2ETestEnv holds a built kbdocs binary and a fake RAGFlow API
type E2ETestEnv struct {
	T         *testing.T
	Fake      *testutil.FakeRAGFlow
	BinaryDir string
	WorkDir   string
}

// SetupE2EEnv builds the binary and starts a fake API serving datasets
func SetupE2EEnv(t *testing.T, datasets ...testutil.FakeDataset) *E2ETestEnv {
	env := &E2ETestEnv{
		T:       t,
		Fake:    testutil.NewFakeRAGFlow(t, datasets...),
		WorkDir: t.TempDir(),
	}
	env.BuildBinary()
	return env
}

// BuildBinary builds the kbdocs binary
func (e *E2ETestEnv) BuildBinary() {
	e.BinaryDir = e.T.TempDir()

	cmd := exec.Command("go", "build", "-o", filepath.Join(e.BinaryDir, "kbdocs"), "./cmd/kbdocs")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build kbdocs: %v\n%s", err, out)
	}
}

// Command prepares a kbdocs invocation authenticated through the environment
func (e *E2ETestEnv) Command(args ...string) *exec.Cmd {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "kbdocs"), args...)
	cmd.Dir = e.WorkDir
	cmd.Env = append(os.Environ(),
		"RAGFLOW_API_URL="+e.Fake.URL(),
		"RAGFLOW_API_KEY="+testutil.APIKey,
		"RAGFLOW_SENTRY_DSN=",
	)
	return cmd
}

// RunKBDocs runs kbdocs and returns its stdout and exit code
func (e *E2ETestEnv) RunKBDocs(args ...string) (string, int) {
	cmd := e.Command(args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err := cmd.Run()
	return stdout.String(), exitCode(e.T, err)
}

// WriteConfig writes ragflow_config.json into the working directory
func (e *E2ETestEnv) WriteConfig(content string) {
	path := filepath.Join(e.WorkDir, "ragflow_config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		e.T.Fatalf("failed to write config: %v", err)
	}
}

func exitCode(t *testing.T, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	t.Fatalf("failed to run kbdocs: %v", err)
	return -1
}
