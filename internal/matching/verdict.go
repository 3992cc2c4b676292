// Package matching evaluates extracted listings against user criteria with one
// batched inference call.
package matching

// Verdict is the inference service's judgment for a single listing. Verdicts
// are index-aligned with the submitted listing order.
type Verdict struct {
	MatchesCriteria     bool                   `json:"matches_criteria"`
	ThoroughExplanation string                 `json:"thorough_explanation"`
	ExtractedInfo       map[string]interface{} `json:"extracted_info"`
	MissingCriteria     []string               `json:"missing_criteria"`
}

// batchResponse is the strict-JSON envelope the service is instructed to return.
type batchResponse struct {
	Results []Verdict `json:"results"`
}
