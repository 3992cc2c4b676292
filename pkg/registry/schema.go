// pkg/registry/schema.go
package registry

// ChannelRegistry enumerates the source channels a deployment searches.
type ChannelRegistry struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Channels    []Channel `json:"channels"`
}

// Channel is one public listing channel.
type Channel struct {
	Handle  string `json:"handle"`
	Title   string `json:"title,omitempty"`
	Limit   int    `json:"limit,omitempty"` // 0 means the global message limit
	Enabled bool   `json:"enabled"`
}

// FetchLimit returns the per-channel message limit, falling back to the given
// global default when the registry entry does not set one.
func (c Channel) FetchLimit(fallback int) int {
	if c.Limit > 0 {
		return c.Limit
	}
	return fallback
}
