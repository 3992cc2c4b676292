package criteria

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "apartment-scout/internal/common/errors"
	"apartment-scout/internal/common/logger"
)

const operationName = "synthesize-criteria"

const systemPrompt = `Convert user apartment preferences into structured criteria. ` +
	`Extract specific requirements for price, rooms, location, amenities, etc.`

const userPromptTemplate = `Convert this apartment search description into JSON criteria:
%s

Format the response as JSON with these possible fields:
- max_price
- min_price
- min_rooms
- max_rooms
- districts (array)
- must_have (array of required amenities)
- nice_to_have (array of preferred but not required amenities)
- max_floor
- other_requirements (array)`

// InferenceClient is the single inference operation the synthesizer needs. The
// implementation must run in strict JSON object response mode.
type InferenceClient interface {
	Complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error)
}

// Synthesizer turns one free-text description into UserCriteria with one
// inference round trip.
type Synthesizer struct {
	inference InferenceClient
	cache     *Cache // nil disables caching
	logger    logger.Logger
}

func NewSynthesizer(inference InferenceClient, cache *Cache, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		inference: inference,
		cache:     cache,
		logger:    log.With(map[string]interface{}{"component": "criteria-synthesizer"}),
	}
}

// Synthesize derives structured criteria from the description. Any inference or
// parse failure surfaces as CRITERIA_SYNTHESIS_FAILED, never as a raw transport
// error.
func (s *Synthesizer) Synthesize(ctx context.Context, description string) (*UserCriteria, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, description); ok {
			s.logger.Debug("criteria served from cache", nil)
			return cached, nil
		}
	}

	raw, err := s.inference.Complete(ctx, operationName, systemPrompt, fmt.Sprintf(userPromptTemplate, description))
	if err != nil {
		return nil, apperrors.NewCriteriaSynthesisError("inference call failed").WithCause(err)
	}

	var crit UserCriteria
	if err := json.Unmarshal([]byte(raw), &crit); err != nil {
		return nil, apperrors.NewCriteriaSynthesisError("unparseable criteria response").WithCause(err)
	}

	if s.cache != nil {
		s.cache.Put(ctx, description, &crit)
	}

	s.logger.Info("criteria synthesized", map[string]interface{}{
		"empty": crit.IsEmpty(),
	})
	return &crit, nil
}
