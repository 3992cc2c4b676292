package bot

import (
	"fmt"
	"strings"

	"apartment-scout/internal/pipeline"
)

const welcomeText = "Welcome to Apartment Search! 🏠\n\n" +
	"Please describe what kind of apartment you're looking for using the /search command.\n\n" +
	"Example: `/search 2-bedroom apartment in Vake, budget $800-1000, must have parking`"

const searchingText = "🔍 Searching for apartments matching your criteria..."

const noMatchesText = "😔 No apartments found matching your criteria. Try adjusting your search parameters! 🔄"

// FormatHeader renders the reply that precedes the individual match messages.
func FormatHeader(count int) string {
	return fmt.Sprintf("Found %d apartments:", count)
}

// FormatMatch renders one matched listing as a Markdown reply.
func FormatMatch(m pipeline.Match) string {
	var b strings.Builder

	b.WriteString("🏠 *Apartment Details:*\n")
	fmt.Fprintf(&b, "Price: %d$\n", m.Listing.Price)
	fmt.Fprintf(&b, "Address: %s (%s)\n", m.Listing.Address, m.Listing.District)
	fmt.Fprintf(&b, "Rooms: %d, bedrooms: %d\n", m.Listing.Rooms, m.Listing.Bedrooms)
	fmt.Fprintf(&b, "Area: %.0fm², floor: %s\n", m.Listing.Area, m.Listing.Floor)
	if len(m.Listing.Features) > 0 {
		fmt.Fprintf(&b, "Features: %s\n", strings.Join(m.Listing.Features, ", "))
	}

	b.WriteString("\n*AI Analysis:*\n")
	b.WriteString("Matches Criteria: ✅\n")
	explanation := m.Explanation
	if explanation == "" {
		explanation = "N/A"
	}
	fmt.Fprintf(&b, "Match Explanation: %s\n", explanation)
	if len(m.MissingCriteria) > 0 {
		fmt.Fprintf(&b, "Could not verify: %s\n", strings.Join(m.MissingCriteria, ", "))
	}

	fmt.Fprintf(&b, "\n📍 [Location](%s)", m.Listing.LocationLink)
	if m.Listing.SourceLink != "" {
		fmt.Fprintf(&b, " | [Original post](%s)", m.Listing.SourceLink)
	}

	return b.String()
}
