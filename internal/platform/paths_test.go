package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataDirForLinuxHonorsXDG(t *testing.T) {
	t.Parallel()

	dir, err := DataDirFor("linux", "/home/u", "/home/u/xdg-data")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/u/xdg-data", "voxkey"), dir)
}

func TestDataDirForLinuxDefault(t *testing.T) {
	t.Parallel()

	dir, err := DataDirFor("linux", "/home/u", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/u", ".local", "share", "voxkey"), dir)
}

func TestConfigDirForDarwin(t *testing.T) {
	t.Parallel()

	dir, err := ConfigDirFor("darwin", "/Users/u", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/Users/u", "Library", "Application Support", "voxkey"), dir)
}

func TestConfigDirForRejectsEmptyHome(t *testing.T) {
	t.Parallel()

	_, err := ConfigDirFor("linux", "", "")
	require.Error(t, err)
}

func TestConfigDirForRejectsUnsupportedOS(t *testing.T) {
	t.Parallel()

	_, err := ConfigDirFor("plan9", "/home/u", "")
	require.Error(t, err)
}

func TestNormalizeArch(t *testing.T) {
	t.Parallel()

	require.Equal(t, "amd64", NormalizeArch("x86_64"))
	require.Equal(t, "arm64", NormalizeArch("aarch64"))
	require.Equal(t, "riscv64", NormalizeArch("riscv64"))
}
