package whisper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveModelNamedNeedsDownload(t *testing.T) {
	t.Parallel()

	resolved, err := ResolveModel("base", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "base", resolved.Name)
	require.True(t, resolved.NeedsDownload)
	require.False(t, resolved.IsCustomPath)
	require.NotEmpty(t, resolved.URL)
	require.NotEmpty(t, resolved.SHA256)
}

func TestResolveModelNamedPresent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ggml-tiny.bin"), []byte("model"), 0o644))

	resolved, err := ResolveModel("tiny", dir)
	require.NoError(t, err)
	require.False(t, resolved.NeedsDownload)
}

func TestResolveModelDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	resolved, err := ResolveModel("", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultModel, resolved.Name)
}

func TestResolveModelUnknownName(t *testing.T) {
	t.Parallel()

	_, err := ResolveModel("gigantic", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown model")
}

func TestResolveModelCustomPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.bin")
	require.NoError(t, os.WriteFile(path, []byte("model"), 0o644))

	resolved, err := ResolveModel(path, "")
	require.NoError(t, err)
	require.True(t, resolved.IsCustomPath)
	require.Equal(t, path, resolved.Path)
}

func TestResolveModelCustomPathMissing(t *testing.T) {
	t.Parallel()

	_, err := ResolveModel(filepath.Join(t.TempDir(), "missing.bin"), "")
	require.Error(t, err)
}

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "en", NormalizeLanguage(" EN "))
	require.Equal(t, "auto", NormalizeLanguage(""))
	require.Equal(t, "auto", NormalizeLanguage("klingon"))
	require.Equal(t, "de", NormalizeLanguage("de"))
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", buildPrompt("", nil))
	require.Equal(t, "Data talk.", buildPrompt("Data talk.", nil))
	require.Equal(t, "Snowflake, dbt.", buildPrompt("", []string{"Snowflake", "dbt"}))
	require.Equal(t, "Data talk. Snowflake, dbt.", buildPrompt("Data talk.", []string{"Snowflake", "dbt"}))
}

func TestEnginePathCandidatesPreferLibexec(t *testing.T) {
	t.Parallel()

	candidates := EnginePathCandidates(filepath.Join("/opt", "voxkey", "bin", "voxkey"))
	require.NotEmpty(t, candidates)
	require.Equal(t, filepath.Join("/opt", "voxkey", "bin", "..", "libexec", "whisper", engineBinaryName()), candidates[0])
}
