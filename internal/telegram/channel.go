// Package telegram reads listing channels over MTProto.
package telegram

import (
	"context"
	"strings"

	"github.com/gotd/td/tg"

	apperrors "apartment-scout/internal/common/errors"
	"apartment-scout/internal/common/logger"
)

// ChannelMessage is one raw message from a source channel. Text is empty for
// media-only messages; those are skipped before extraction.
type ChannelMessage struct {
	ID         int
	Text       string
	ChatHandle string
}

// Reader fetches recent messages from public channels. One Reader is shared by
// all searches; it holds no per-search state.
type Reader struct {
	api    *tg.Client
	logger logger.Logger
}

func NewReader(api *tg.Client, log logger.Logger) *Reader {
	return &Reader{
		api:    api,
		logger: log.With(map[string]interface{}{"component": "channel-reader"}),
	}
}

// IterMessages returns up to limit messages from the channel in the channel's
// own recency order (newest first, as Telegram yields them).
func (r *Reader) IterMessages(ctx context.Context, channel string, limit int) ([]ChannelMessage, error) {
	handle := strings.TrimPrefix(channel, "@")

	resolved, err := r.api.ContactsResolveUsername(ctx, handle)
	if err != nil {
		return nil, apperrors.NewChannelRetrievalError(channel, "resolve username failed").WithCause(err)
	}

	var peer tg.InputPeerClass
	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			peer = &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
			break
		}
	}
	if peer == nil {
		return nil, apperrors.NewChannelRetrievalError(channel, "handle does not resolve to a channel")
	}

	history, err := r.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, apperrors.NewChannelRetrievalError(channel, "get history failed").WithCause(err)
	}

	var raw []tg.MessageClass
	switch h := history.(type) {
	case *tg.MessagesChannelMessages:
		raw = h.Messages
	case *tg.MessagesMessages:
		raw = h.Messages
	case *tg.MessagesMessagesSlice:
		raw = h.Messages
	default:
		return nil, apperrors.NewChannelRetrievalError(channel, "unexpected history response")
	}

	messages := make([]ChannelMessage, 0, len(raw))
	for _, m := range raw {
		msg, ok := m.(*tg.Message)
		if !ok {
			// Service messages (joins, pins) carry no listing text.
			continue
		}
		messages = append(messages, ChannelMessage{
			ID:         msg.ID,
			Text:       msg.Message,
			ChatHandle: handle,
		})
	}

	r.logger.Debug("channel history fetched", map[string]interface{}{
		"channel":  channel,
		"messages": len(messages),
	})
	return messages, nil
}
