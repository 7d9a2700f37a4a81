package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate_Memoized(t *testing.T) {
	first := Locate("sh")
	second := Locate("sh")
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestLocate_Missing(t *testing.T) {
	assert.Empty(t, Locate("definitely-not-an-installed-tool"))
}

func TestMustLocate_Missing(t *testing.T) {
	_, err := MustLocate("definitely-not-an-installed-tool")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "definitely-not-an-installed-tool", notFound.Tool)
}

func TestRunner_Run(t *testing.T) {
	r := &Runner{Quiet: true}
	err := r.Run(context.Background(), Command{Tool: "sh", Args: []string{"-c", "true"}})
	assert.NoError(t, err)
}

// TestRunner_Run_Failure verifies the exit status and stderr are preserved
// for diagnostics.
func TestRunner_Run_Failure(t *testing.T) {
	r := &Runner{Quiet: true}
	err := r.Run(context.Background(), Command{
		Tool: "sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, "sh", runErr.Command)
	assert.Equal(t, 3, runErr.ExitCode)
	assert.Contains(t, runErr.Stderr, "broken")
	assert.Contains(t, runErr.Error(), "status 3")
}

func TestRunner_Output(t *testing.T) {
	r := &Runner{Quiet: true}
	out, err := r.Output(context.Background(), Command{
		Tool: "sh",
		Args: []string{"-c", "echo hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunner_Dir(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	r := &Runner{Quiet: true}
	out, err := r.Output(context.Background(), Command{
		Tool: "sh",
		Args: []string{"-c", "pwd"},
		Dir:  dir,
	})
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(out))
}

func TestRunner_MissingTool(t *testing.T) {
	r := &Runner{Quiet: true}
	err := r.Run(context.Background(), Command{Tool: "definitely-not-an-installed-tool"})

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
