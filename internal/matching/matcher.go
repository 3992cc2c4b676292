package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "apartment-scout/internal/common/errors"
	"apartment-scout/internal/common/logger"
	"apartment-scout/internal/criteria"
	"apartment-scout/internal/listing"
)

const operationName = "match-batch"

const systemPrompt = `You are an AI assistant that analyzes multiple apartment listings ` +
	`and determines if they match user criteria. For each listing, extract key information and provide ` +
	`a clear match/no match decision with explanation. Explanation must be reasoned, you must go through ` +
	`all criteria and explain why the match.`

// responseSchema pins the contract the service must honor. Verdict fields stay
// optional: an absent matches_criteria is a valid non-match, not a schema error.
const responseSchema = `{
	"type": "object",
	"required": ["results"],
	"properties": {
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"matches_criteria": {"type": "boolean"},
					"thorough_explanation": {"type": "string"},
					"extracted_info": {"type": "object"},
					"missing_criteria": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

var compiledSchema = gojsonschema.NewStringLoader(responseSchema)

// InferenceClient is the single inference operation the matcher needs. The
// implementation must run in strict JSON object response mode.
type InferenceClient interface {
	Complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error)
}

// Matcher evaluates a whole listing batch with one inference round trip.
type Matcher struct {
	inference InferenceClient
	logger    logger.Logger
}

func NewMatcher(inference InferenceClient, log logger.Logger) *Matcher {
	return &Matcher{
		inference: inference,
		logger:    log.With(map[string]interface{}{"component": "batch-matcher"}),
	}
}

// MatchBatch returns verdicts index-aligned with listings. The verdict slice
// may be shorter than the input when the service returns fewer entries; the
// caller treats the missing tail as non-matches. A whole-call transport or
// parse failure surfaces as MATCHING_FAILED.
func (m *Matcher) MatchBatch(ctx context.Context, listings []listing.ListingRecord, crit *criteria.UserCriteria) ([]Verdict, error) {
	if len(listings) == 0 {
		return []Verdict{}, nil
	}

	raw, err := m.inference.Complete(ctx, operationName, systemPrompt, buildUserPrompt(listings, crit))
	if err != nil {
		return nil, apperrors.NewMatchingError("inference call failed").WithCause(err)
	}

	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, apperrors.NewMatchingError("unparseable match response").WithCause(err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, apperrors.NewMatchingError("match response violates schema: " + strings.Join(details, "; "))
	}

	var response batchResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return nil, apperrors.NewMatchingError("unparseable match response").WithCause(err)
	}

	verdicts := response.Results
	if len(verdicts) > len(listings) {
		// The service invented extra entries; nothing to attribute them to.
		verdicts = verdicts[:len(listings)]
	}
	if len(verdicts) < len(listings) {
		m.logger.Warn("match response shorter than batch, tail treated as non-matches", map[string]interface{}{
			"submitted": len(listings),
			"returned":  len(verdicts),
		})
	}

	return verdicts, nil
}

func buildUserPrompt(listings []listing.ListingRecord, crit *criteria.UserCriteria) string {
	var b strings.Builder

	b.WriteString("User is looking for an apartment with these criteria:\n")
	b.WriteString(crit.PromptLines())
	b.WriteString("\n\nAnalyze each listing below and return one verdict per listing, in the same order.\n")

	for i, record := range listings {
		fmt.Fprintf(&b, "\nListing %d:\n%s", i+1, record.PromptText())
	}

	b.WriteString(`
Format your response as a JSON object with a "results" array containing one object per listing, each with:
- matches_criteria (boolean)
- thorough_explanation (string)
- extracted_info (object with price, rooms, location, link to the original telegram message and link to location on maps)
- missing_criteria (array of criteria that couldn't be determined)`)

	return b.String()
}
