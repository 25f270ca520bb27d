package codec

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCodec struct{ dataType string }

func (m *mockCodec) DataType() string             { return m.dataType }
func (m *mockCodec) IsLongLegacy() bool           { return false }
func (m *mockCodec) Encode(v any) ([]byte, error) { return nil, nil }
func (m *mockCodec) Decode(b []byte) (any, error) { return nil, nil }

func withCleanRegistry(t *testing.T) {
	original := snapshotRegistry()
	t.Cleanup(func() { resetRegistry(original) })
	resetRegistry(map[string]func() ValueCodec{})
}

func TestRegisterCodec(t *testing.T) {
	withCleanRegistry(t)

	RegisterCodec("custom", func() ValueCodec { return &mockCodec{dataType: "custom"} })

	c, err := GetCodec("custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", c.DataType())
}

func TestRegisterCodecOverwrite(t *testing.T) {
	withCleanRegistry(t)

	RegisterCodec("custom", func() ValueCodec { return &mockCodec{dataType: "first"} })
	RegisterCodec("custom", func() ValueCodec { return &mockCodec{dataType: "second"} })

	c, err := GetCodec("custom")
	require.NoError(t, err)
	assert.Equal(t, "second", c.DataType())
}

func TestGetCodecUnregisteredReturnsError(t *testing.T) {
	withCleanRegistry(t)

	_, err := GetCodec("nonexistent")
	require.Error(t, err)
}

func TestLegacyCodecsRegisteredByInit(t *testing.T) {
	longC, err := GetCodec("long")
	require.NoError(t, err)
	assert.Equal(t, "long", longC.DataType())
	assert.True(t, longC.IsLongLegacy())

	doubleC, err := GetCodec("double")
	require.NoError(t, err)
	assert.Equal(t, "double", doubleC.DataType())
	assert.False(t, doubleC.IsLongLegacy())
}

func TestSnapshotRegistryIsShallowCopy(t *testing.T) {
	snap := snapshotRegistry()
	snap2 := make(map[string]func() ValueCodec)
	maps.Copy(snap2, snap)
	assert.Equal(t, len(snap), len(snap2))
}
