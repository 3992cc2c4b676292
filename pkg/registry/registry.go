// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func LoadRegistry(path string) (*ChannelRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ChannelRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Default returns the built-in registry used when no registry file is deployed.
func Default() *ChannelRegistry {
	return &ChannelRegistry{
		Version: "builtin",
		Channels: []Channel{
			{Handle: "@kvartiry_v_tbilisi", Title: "Квартиры в Тбилиси", Enabled: true},
		},
	}
}

// Enabled returns the channels a search should read, in registry order.
func (r *ChannelRegistry) Enabled() []Channel {
	var out []Channel
	for _, ch := range r.Channels {
		if ch.Enabled {
			out = append(out, ch)
		}
	}
	return out
}

func (r *ChannelRegistry) validate() error {
	for i, ch := range r.Channels {
		if strings.TrimPrefix(ch.Handle, "@") == "" {
			return fmt.Errorf("channel %d: handle must not be empty", i)
		}
	}
	return nil
}
