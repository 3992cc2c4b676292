package listing

import (
	"regexp"
	"strconv"
	"strings"
)

// Field names of the intermediate match map. Every name in mandatoryFields must
// match for a record to be emitted; how a field is found can change per field
// without touching that completeness rule.
const (
	fieldID       = "id"
	fieldDistrict = "district"
	fieldAddress  = "address"
	fieldRooms    = "rooms"
	fieldBedrooms = "bedrooms"
	fieldArea     = "area"
	fieldFloor    = "floor"
	fieldPrice    = "price"
	fieldLocation = "location"
)

var fieldPatterns = map[string]*regexp.Regexp{
	fieldID:       regexp.MustCompile(`^\*\*(\d{4}-\d{4})\*\*`),
	fieldDistrict: regexp.MustCompile(`#([А-Яа-яA-Za-z]+)`),
	fieldAddress:  regexp.MustCompile(`\n([^\n]+)`),
	fieldRooms:    regexp.MustCompile(`\*\*Комнат:\*\* #(\d+)к`),
	fieldBedrooms: regexp.MustCompile(`\*\*Спален:\*\* (\d+)`),
	fieldArea:     regexp.MustCompile(`\*\*Площадь:\*\* (\d+)m²`),
	fieldFloor:    regexp.MustCompile(`\*\*Этаж:\*\* ([\d/]+)`),
	fieldPrice:    regexp.MustCompile(`\*\*Цена\*\*: ~?(\d+)\$`),
	fieldLocation: regexp.MustCompile(`📍\[Локация\]\((.*?)\)`),
}

var featurePattern = regexp.MustCompile(`__- ([^\n]+)`)

var mandatoryFields = []string{
	fieldID,
	fieldDistrict,
	fieldAddress,
	fieldRooms,
	fieldBedrooms,
	fieldArea,
	fieldFloor,
	fieldPrice,
	fieldLocation,
}

// matchFields runs every field extractor independently and collects whatever
// matched. Absent fields are simply absent from the map.
func matchFields(rawText string) map[string]string {
	values := make(map[string]string, len(fieldPatterns))
	for name, pattern := range fieldPatterns {
		if m := pattern.FindStringSubmatch(rawText); m != nil {
			values[name] = m[1]
		}
	}
	return values
}

// Extract parses a raw message into a ListingRecord. The second return value is
// false when any mandatory field is missing; that is the expected outcome for
// promotional and off-format messages, not an error.
func Extract(rawText string) (*ListingRecord, bool) {
	values := matchFields(rawText)
	for _, name := range mandatoryFields {
		if _, ok := values[name]; !ok {
			return nil, false
		}
	}

	rooms, err := strconv.Atoi(values[fieldRooms])
	if err != nil {
		return nil, false
	}
	bedrooms, err := strconv.Atoi(values[fieldBedrooms])
	if err != nil {
		return nil, false
	}
	area, err := strconv.ParseFloat(values[fieldArea], 64)
	if err != nil {
		return nil, false
	}
	price, err := strconv.Atoi(values[fieldPrice])
	if err != nil {
		return nil, false
	}

	var features []string
	for _, m := range featurePattern.FindAllStringSubmatch(rawText, -1) {
		features = append(features, m[1])
	}

	return &ListingRecord{
		ID:           values[fieldID],
		District:     values[fieldDistrict],
		Address:      strings.TrimSpace(values[fieldAddress]),
		Rooms:        rooms,
		Bedrooms:     bedrooms,
		Area:         area,
		Floor:        values[fieldFloor],
		Price:        price,
		Features:     features,
		LocationLink: values[fieldLocation],
	}, true
}

// ExtractFromMessage extracts a record and stamps the source message identity
// onto it.
func ExtractFromMessage(rawText string, messageID int, chatHandle string) (*ListingRecord, bool) {
	record, ok := Extract(rawText)
	if !ok {
		return nil, false
	}
	record.SourceMessageID = messageID
	record.SourceLink = MessageLink(chatHandle, messageID)
	return record, true
}
