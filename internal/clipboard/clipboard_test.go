package clipboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToolsForDarwin(t *testing.T) {
	t.Parallel()

	tools := toolsFor("darwin")
	require.Len(t, tools, 1)
	require.Equal(t, "pbcopy", tools[0].name)
	require.False(t, tools[0].detached)
}

func TestToolsForLinuxPrefersWayland(t *testing.T) {
	t.Parallel()

	tools := toolsFor("linux")
	require.Len(t, tools, 2)
	require.Equal(t, "wl-copy", tools[0].name)
	require.Equal(t, "xclip", tools[1].name)
	require.True(t, tools[1].detached)
}

func TestDetectUnavailable(t *testing.T) {
	t.Parallel()

	_, err := detect([]tool{{name: "definitely-not-a-real-clipboard-tool"}})
	require.ErrorIs(t, err, ErrUnavailable)
}
