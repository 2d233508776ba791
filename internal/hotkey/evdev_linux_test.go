//go:build linux

package hotkey

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeInputEvent(t *testing.T) {
	t.Parallel()

	raw := make([]byte, inputEventSize)
	binary.LittleEndian.PutUint64(raw[0:8], 1700000000)
	binary.LittleEndian.PutUint64(raw[8:16], 123456)
	binary.LittleEndian.PutUint16(raw[16:18], evKey)
	binary.LittleEndian.PutUint16(raw[18:20], 19) // KEY_R
	binary.LittleEndian.PutUint32(raw[20:24], keyValuePress)

	ev := decodeInputEvent(raw)
	require.EqualValues(t, 1700000000, ev.Sec)
	require.EqualValues(t, evKey, ev.Type)
	require.EqualValues(t, 19, ev.Code)
	require.EqualValues(t, keyValuePress, ev.Value)

	name, ok := keyNames[ev.Code]
	require.True(t, ok)
	require.Equal(t, "r", name)
}

func TestKeyNamesCollapseModifierVariants(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ctrl", keyNames[29])
	require.Equal(t, "ctrl", keyNames[97])
	require.Equal(t, "alt", keyNames[56])
	require.Equal(t, "alt", keyNames[100])
	require.Equal(t, "super", keyNames[125])
	require.Equal(t, "super", keyNames[126])
}
