// Package pipeline sequences one search: criteria synthesis, channel
// retrieval, listing extraction and batched matching.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	apperrors "apartment-scout/internal/common/errors"
	"apartment-scout/internal/common/logger"
	"apartment-scout/internal/common/metrics"
	"apartment-scout/internal/criteria"
	"apartment-scout/internal/listing"
	"apartment-scout/internal/matching"
	"apartment-scout/internal/telegram"
	"apartment-scout/pkg/registry"
)

// State is the orchestrator's position within one search run.
type State string

const (
	StateIdle               State = "Idle"
	StateCriteriaPending    State = "CriteriaPending"
	StateFetchingListings   State = "FetchingListings"
	StateExtractingListings State = "ExtractingListings"
	StateMatchingPending    State = "MatchingPending"
	StateDone               State = "Done"
	StateFailed             State = "Failed"
)

// Collaborator interfaces, defined here so searches can run against test doubles.
type (
	Synthesizer interface {
		Synthesize(ctx context.Context, description string) (*criteria.UserCriteria, error)
	}

	ChannelReader interface {
		IterMessages(ctx context.Context, channel string, limit int) ([]telegram.ChannelMessage, error)
	}

	Matcher interface {
		MatchBatch(ctx context.Context, listings []listing.ListingRecord, crit *criteria.UserCriteria) ([]matching.Verdict, error)
	}
)

// Match pairs a matched listing with the verdict content the user sees.
type Match struct {
	Listing         listing.ListingRecord
	Explanation     string
	ExtractedInfo   map[string]interface{}
	MissingCriteria []string
}

// Result is the outcome of one completed search.
type Result struct {
	RequestID         string
	Criteria          *criteria.UserCriteria
	Matches           []Match
	MessagesScanned   int
	ListingsExtracted int
}

type Config struct {
	Channels     []registry.Channel
	MessageLimit int // fallback for channels without their own limit

	// StateHook observes every state transition of a run. Optional.
	StateHook func(requestID string, state State)
}

// Pipeline runs searches. It holds only read-only configuration and shared
// clients, so concurrent searches never contend.
type Pipeline struct {
	config      Config
	synthesizer Synthesizer
	reader      ChannelReader
	matcher     Matcher
	logger      logger.Logger
}

func New(cfg Config, synthesizer Synthesizer, reader ChannelReader, matcher Matcher, log logger.Logger) *Pipeline {
	return &Pipeline{
		config:      cfg,
		synthesizer: synthesizer,
		reader:      reader,
		matcher:     matcher,
		logger:      log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// run tracks the state machine of a single search.
type run struct {
	requestID string
	state     State
	hook      func(string, State)
	logger    logger.Logger
}

func (r *run) transition(next State) {
	r.state = next
	r.logger.Debug("state transition", map[string]interface{}{"state": string(next)})
	if r.hook != nil {
		r.hook(r.requestID, next)
	}
}

func (r *run) fail(err error) error {
	r.transition(StateFailed)
	metrics.SearchesFailed.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
	r.logger.WithError(err).Error("search failed", map[string]interface{}{
		"errorCode": string(apperrors.CodeOf(err)),
	})
	return err
}

// Search runs one complete pass of the pipeline. There are no retries at this
// layer; any stage failure aborts this search only.
func (p *Pipeline) Search(ctx context.Context, description string) (*Result, error) {
	requestID := uuid.NewString()
	r := &run{
		requestID: requestID,
		state:     StateIdle,
		hook:      p.config.StateHook,
		logger:    p.logger.With(map[string]interface{}{"requestId": requestID}),
	}
	metrics.SearchesStarted.Inc()

	r.transition(StateCriteriaPending)
	crit, err := p.synthesizer.Synthesize(ctx, description)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateFetchingListings)
	messages, err := p.fetchMessages(ctx, r)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateExtractingListings)
	listings := extractListings(messages)
	metrics.ListingsExtracted.Add(float64(len(listings)))
	metrics.ListingsSkipped.Add(float64(len(messages) - len(listings)))

	r.transition(StateMatchingPending)
	verdicts, err := p.matcher.MatchBatch(ctx, listings, crit)
	if err != nil {
		return nil, r.fail(err)
	}

	result := &Result{
		RequestID:         requestID,
		Criteria:          crit,
		Matches:           zipMatches(listings, verdicts),
		MessagesScanned:   len(messages),
		ListingsExtracted: len(listings),
	}

	r.transition(StateDone)
	metrics.SearchesCompleted.Inc()
	metrics.MatchesReturned.Observe(float64(len(result.Matches)))
	r.logger.Info("search completed", map[string]interface{}{
		"messagesScanned":   result.MessagesScanned,
		"listingsExtracted": result.ListingsExtracted,
		"matches":           len(result.Matches),
	})
	return result, nil
}

// fetchMessages drains every configured channel up to its limit. Channels are
// read one after another; only each channel's own recency order is guaranteed.
func (p *Pipeline) fetchMessages(ctx context.Context, r *run) ([]telegram.ChannelMessage, error) {
	var merged []telegram.ChannelMessage
	for _, ch := range p.config.Channels {
		batch, err := p.reader.IterMessages(ctx, ch.Handle, ch.FetchLimit(p.config.MessageLimit))
		if err != nil {
			if apperrors.HasCode(err, apperrors.ErrCodeChannelRetrievalFailed) {
				return nil, err
			}
			return nil, apperrors.NewChannelRetrievalError(ch.Handle, "channel read failed").WithCause(err)
		}
		metrics.MessagesFetched.WithLabelValues(ch.Handle).Add(float64(len(batch)))
		merged = append(merged, batch...)
	}
	return merged, nil
}

// extractListings drops text-less and off-format messages silently and keeps
// the records in arrival order.
func extractListings(messages []telegram.ChannelMessage) []listing.ListingRecord {
	var listings []listing.ListingRecord
	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}
		record, ok := listing.ExtractFromMessage(msg.Text, msg.ID, msg.ChatHandle)
		if !ok {
			continue
		}
		listings = append(listings, *record)
	}
	return listings
}

// zipMatches attributes verdicts to listings by index and keeps only explicit
// matches. A verdict slice shorter than the listing slice excludes the tail.
func zipMatches(listings []listing.ListingRecord, verdicts []matching.Verdict) []Match {
	var matches []Match
	for i, v := range verdicts {
		if i >= len(listings) {
			break
		}
		if !v.MatchesCriteria {
			continue
		}
		matches = append(matches, Match{
			Listing:         listings[i],
			Explanation:     v.ThoroughExplanation,
			ExtractedInfo:   v.ExtractedInfo,
			MissingCriteria: v.MissingCriteria,
		})
	}
	return matches
}
