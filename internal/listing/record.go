// Package listing turns raw channel messages into structured apartment records.
package listing

import (
	"fmt"
	"strings"
)

// ListingRecord is one fully extracted apartment listing. A record exists only
// when every mandatory field was found in the source message; partial records
// are never constructed.
type ListingRecord struct {
	ID              string   `json:"id"`
	District        string   `json:"district"`
	Address         string   `json:"address"`
	Rooms           int      `json:"rooms"`
	Bedrooms        int      `json:"bedrooms"`
	Area            float64  `json:"area"`
	Floor           string   `json:"floor"`
	Price           int      `json:"price"`
	Features        []string `json:"features"`
	LocationLink    string   `json:"location_link"`
	SourceMessageID int      `json:"source_message_id,omitempty"`
	SourceLink      string   `json:"source_link,omitempty"`
}

// PromptText renders the record as the stable key:value block submitted to the
// batch matcher.
func (r *ListingRecord) PromptText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\n", r.ID)
	fmt.Fprintf(&b, "district: %s\n", r.District)
	fmt.Fprintf(&b, "address: %s\n", r.Address)
	fmt.Fprintf(&b, "rooms: %d\n", r.Rooms)
	fmt.Fprintf(&b, "bedrooms: %d\n", r.Bedrooms)
	fmt.Fprintf(&b, "area: %.1f m2\n", r.Area)
	fmt.Fprintf(&b, "floor: %s\n", r.Floor)
	fmt.Fprintf(&b, "price: %d$\n", r.Price)
	if len(r.Features) > 0 {
		fmt.Fprintf(&b, "features: %s\n", strings.Join(r.Features, ", "))
	}
	fmt.Fprintf(&b, "location: %s\n", r.LocationLink)
	if r.SourceLink != "" {
		fmt.Fprintf(&b, "source: %s\n", r.SourceLink)
	}
	return b.String()
}

// MessageLink derives the public link to a channel message. The channel handle
// may carry the leading @.
func MessageLink(chatHandle string, messageID int) string {
	return fmt.Sprintf("https://t.me/%s/%d", strings.TrimPrefix(chatHandle, "@"), messageID)
}
