// Package bot exposes the search pipeline over Telegram bot commands.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "apartment-scout/internal/common/errors"
	"apartment-scout/internal/common/logger"
	"apartment-scout/internal/pipeline"
)

// Searcher runs one search per invocation. Implemented by pipeline.Pipeline.
type Searcher interface {
	Search(ctx context.Context, description string) (*pipeline.Result, error)
}

type Config struct {
	MaxResults    int           // replies per search
	SearchTimeout time.Duration // bound on one whole search
	PollTimeout   int           // long-poll timeout, seconds
}

// Bot runs the command loop. Each /search spawns its own goroutine so one
// slow search never stalls another user's request.
type Bot struct {
	api      *tgbotapi.BotAPI
	searcher Searcher
	config   Config
	logger   logger.Logger
	wg       sync.WaitGroup
}

func New(api *tgbotapi.BotAPI, searcher Searcher, cfg Config, log logger.Logger) *Bot {
	return &Bot{
		api:      api,
		searcher: searcher,
		config:   cfg,
		logger:   log.With(map[string]interface{}{"component": "bot"}),
	}
}

// Run processes updates until ctx is cancelled, then waits for in-flight
// searches to finish.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.PollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("bot started", map[string]interface{}{"username": b.api.Self.UserName})

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	chatID := update.Message.Chat.ID
	switch update.Message.Command() {
	case "start", "help":
		b.reply(chatID, welcomeText)
	case "search":
		query := strings.TrimSpace(update.Message.CommandArguments())
		if query == "" {
			// User error, reported back without running the pipeline.
			b.reply(chatID, apperrors.UserMessage(apperrors.NewEmptySearchQueryError()))
			return
		}
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.runSearch(ctx, chatID, query)
		}()
	}
}

func (b *Bot) runSearch(ctx context.Context, chatID int64, query string) {
	b.reply(chatID, searchingText)

	searchCtx, cancel := context.WithTimeout(ctx, b.config.SearchTimeout)
	defer cancel()

	result, err := b.searcher.Search(searchCtx, query)
	if err != nil {
		b.reply(chatID, apperrors.UserMessage(err))
		return
	}

	if len(result.Matches) == 0 {
		b.reply(chatID, noMatchesText)
		return
	}

	b.reply(chatID, FormatHeader(len(result.Matches)))
	for i, match := range result.Matches {
		if i >= b.config.MaxResults {
			break
		}
		b.reply(chatID, FormatMatch(match))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.logger.WithError(err).Warn("failed to send reply", map[string]interface{}{
			"chatId": chatID,
		})
	}
}
