package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Nil(t, cfg, "missing file means no hooks")

	content := `version: 1
hooks:
  on_complete:
    - command: echo done
  on_submit:
    - command: cat > answers.json
      stdin: true
      timeout: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Version)
	require.Len(t, cfg.For("complete"), 1)
	require.Len(t, cfg.For("submit"), 1)
	require.True(t, cfg.For("submit")[0].Stdin)
	require.Equal(t, 5, cfg.For("submit")[0].Timeout)
	require.Empty(t, cfg.For("change"))

	var nilCfg *Config
	require.Empty(t, nilCfg.For("submit"))
}

func TestLoadConfig_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("hooks: ["), 0644))
	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestExecute_ExpandsVariables(t *testing.T) {
	t.Parallel()

	out, err := Execute(context.Background(), &HookConfig{Command: "echo {{form}} {{event}} {{step}}"}, t.TempDir(),
		Variables{Form: "life-quote", Event: "submit", Step: 3}, nil)
	require.NoError(t, err)
	require.Equal(t, "life-quote submit 3\n", out)
}

func TestExecute_PipesPayload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hook := &HookConfig{Command: "cat > out.json", Stdin: true}
	_, err := Execute(context.Background(), hook, dir, Variables{}, []byte(`{"name":"Ana"}`))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	require.Equal(t, `{"name":"Ana"}`, string(data))
}

func TestExecute_FailureIsReportedInOutput(t *testing.T) {
	t.Parallel()

	out, err := Execute(context.Background(), &HookConfig{Command: "echo partial; echo oops >&2; exit 3"}, t.TempDir(), Variables{}, nil)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "[Hook command failed:"))
	require.Contains(t, out, "partial")
	require.Contains(t, out, "oops")
}

func TestExecute_Timeout(t *testing.T) {
	t.Parallel()

	out, err := Execute(context.Background(), &HookConfig{Command: "sleep 5", Timeout: 1}, t.TempDir(), Variables{}, nil)
	require.NoError(t, err)
	require.Contains(t, out, "timed out after 1s")
}

func TestExecute_Empty(t *testing.T) {
	t.Parallel()

	out, err := Execute(context.Background(), nil, t.TempDir(), Variables{}, nil)
	require.NoError(t, err)
	require.Empty(t, out)

	out, err = Execute(context.Background(), &HookConfig{}, t.TempDir(), Variables{}, nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestExecuteAll(t *testing.T) {
	t.Parallel()

	hooks := []*HookConfig{
		{Command: "echo first"},
		{Command: "true"},
		{Command: "echo second"},
	}
	out, err := ExecuteAll(context.Background(), hooks, t.TempDir(), Variables{}, nil)
	require.NoError(t, err)
	require.Equal(t, "first\n\nsecond\n", out)
}

func TestExecuteAll_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteAll(ctx, []*HookConfig{{Command: "echo test"}}, t.TempDir(), Variables{}, nil)
	require.Error(t, err)
}
