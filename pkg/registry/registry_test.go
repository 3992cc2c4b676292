package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistryFile(t, `{
		"version": "1.0",
		"lastUpdated": "2026-08-01",
		"channels": [
			{"handle": "@kvartiry_v_tbilisi", "title": "Квартиры в Тбилиси", "limit": 100, "enabled": true},
			{"handle": "@old_channel", "enabled": false}
		]
	}`)

	reg, err := LoadRegistry(path)

	require.NoError(t, err)
	assert.Equal(t, "1.0", reg.Version)
	require.Len(t, reg.Channels, 2)
	assert.Equal(t, "@kvartiry_v_tbilisi", reg.Channels[0].Handle)
	assert.Equal(t, 100, reg.Channels[0].Limit)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadRegistry_InvalidJSON(t *testing.T) {
	path := writeRegistryFile(t, `{"channels": [`)
	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistry_EmptyHandleRejected(t *testing.T) {
	path := writeRegistryFile(t, `{"channels": [{"handle": "@", "enabled": true}]}`)
	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handle")
}

func TestEnabled_FiltersAndKeepsOrder(t *testing.T) {
	reg := &ChannelRegistry{Channels: []Channel{
		{Handle: "@first", Enabled: true},
		{Handle: "@disabled", Enabled: false},
		{Handle: "@second", Enabled: true},
	}}

	enabled := reg.Enabled()

	require.Len(t, enabled, 2)
	assert.Equal(t, "@first", enabled[0].Handle)
	assert.Equal(t, "@second", enabled[1].Handle)
}

func TestFetchLimit(t *testing.T) {
	assert.Equal(t, 50, Channel{Limit: 50}.FetchLimit(100))
	assert.Equal(t, 100, Channel{}.FetchLimit(100))
}

func TestDefault(t *testing.T) {
	reg := Default()
	require.Len(t, reg.Channels, 1)
	assert.Equal(t, "@kvartiry_v_tbilisi", reg.Channels[0].Handle)
	assert.True(t, reg.Channels[0].Enabled)
}
