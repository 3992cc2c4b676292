// Package criteria converts free-text housing preferences into the structured
// search criteria the batch matcher consumes.
package criteria

import (
	"fmt"
	"strings"
)

// UserCriteria is the structured form of a user's preferences. Every field is
// optional; the inference service fills only what the description supports.
type UserCriteria struct {
	MaxPrice          *int     `json:"max_price,omitempty"`
	MinPrice          *int     `json:"min_price,omitempty"`
	MinRooms          *int     `json:"min_rooms,omitempty"`
	MaxRooms          *int     `json:"max_rooms,omitempty"`
	Districts         []string `json:"districts,omitempty"`
	MustHave          []string `json:"must_have,omitempty"`
	NiceToHave        []string `json:"nice_to_have,omitempty"`
	MaxFloor          *int     `json:"max_floor,omitempty"`
	OtherRequirements []string `json:"other_requirements,omitempty"`
}

// IsEmpty reports whether no constraint could be derived from the description.
// The pipeline still runs with empty criteria.
func (c *UserCriteria) IsEmpty() bool {
	return c.MaxPrice == nil && c.MinPrice == nil &&
		c.MinRooms == nil && c.MaxRooms == nil && c.MaxFloor == nil &&
		len(c.Districts) == 0 && len(c.MustHave) == 0 &&
		len(c.NiceToHave) == 0 && len(c.OtherRequirements) == 0
}

// PromptLines renders the criteria in the stable "- key: value" form used in
// the matcher prompt. Field order never changes between calls.
func (c *UserCriteria) PromptLines() string {
	var lines []string

	appendInt := func(key string, value *int) {
		if value != nil {
			lines = append(lines, fmt.Sprintf("- %s: %d", key, *value))
		}
	}
	appendList := func(key string, values []string) {
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", key, strings.Join(values, ", ")))
		}
	}

	appendInt("max_price", c.MaxPrice)
	appendInt("min_price", c.MinPrice)
	appendInt("min_rooms", c.MinRooms)
	appendInt("max_rooms", c.MaxRooms)
	appendList("districts", c.Districts)
	appendList("must_have", c.MustHave)
	appendList("nice_to_have", c.NiceToHave)
	appendInt("max_floor", c.MaxFloor)
	appendList("other_requirements", c.OtherRequirements)

	if len(lines) == 0 {
		return "- no specific constraints"
	}
	return strings.Join(lines, "\n")
}
