// Package telegram delivers pipeline notifications via the Telegram Bot API.
// Each domain bot runs one Sink subscribed to its notification bus.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/models"
)

// Sink consumes notifications from a bus subscription and sends them to a
// fixed chat, with retry and a rate limit ahead of the Bot API.
type Sink struct {
	name           string
	bot            *tgbotapi.BotAPI
	chatID         int64
	limiter        *rate.Limiter
	maxRetries     int
	retryDelayBase time.Duration
}

// StatusFunc supplies the /status command reply.
type StatusFunc func() string

// NewSink creates a sink for one bot. ratePerSecond caps outgoing sends;
// Telegram rejects bots that exceed roughly one message per second per chat.
func NewSink(name, botToken, chatID string, maxRetries int, retryDelayBase time.Duration, ratePerSecond float64) (*Sink, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}

	return &Sink{
		name:           name,
		bot:            bot,
		chatID:         chatIDInt,
		limiter:        rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Run consumes the subscription until the channel is closed or ctx is
// cancelled. Delivery failures are logged and absorbed; the pipeline never
// retries beyond this sink.
func (s *Sink) Run(ctx context.Context, notifications <-chan models.Notification) {
	logger.Info("%s sink: delivering to chat %d", s.name, s.chatID)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				logger.Info("%s sink: bus closed, stopping", s.name)
				return
			}
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			if err := s.deliver(n); err != nil {
				logger.Error("%s sink: failed to deliver notification %s: %v", s.name, n.ID, err)
			} else {
				logger.Debug("%s sink: delivered notification %s", s.name, n.ID)
			}
		}
	}
}

// deliver sends the notification, as a photo with caption when it carries an
// attachment. Templates author their own Markdown, so the text is sent
// unescaped with legacy Markdown parse mode.
func (s *Sink) deliver(n models.Notification) error {
	var msg tgbotapi.Chattable
	if n.AttachmentURL != "" {
		photo := tgbotapi.NewPhoto(s.chatID, tgbotapi.FileURL(n.AttachmentURL))
		photo.Caption = n.Message
		photo.ParseMode = tgbotapi.ModeMarkdown
		msg = photo
	} else {
		text := tgbotapi.NewMessage(s.chatID, n.Message)
		text.ParseMode = tgbotapi.ModeMarkdown
		msg = text
	}
	return s.sendWithRetry(msg)
}

// sendWithRetry applies linear-backoff retry around a single send.
func (s *Sink) sendWithRetry(msg tgbotapi.Chattable) error {
	var lastErr error
	for i := 0; i < s.maxRetries; i++ {
		if _, err := s.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(s.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", s.maxRetries, lastErr)
}

// ListenForCommands starts a goroutine that polls for bot commands. It
// returns immediately; the goroutine stops when ctx is cancelled.
func (s *Sink) ListenForCommands(ctx context.Context, status StatusFunc) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					s.handleCommand(update.Message, status)
				}
			}
		}
	}()
}

func (s *Sink) handleCommand(msg *tgbotapi.Message, status StatusFunc) {
	switch msg.Command() {
	case "ping":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pong")
		s.bot.Send(reply) //nolint:errcheck
	case "status":
		text := "No categories configured"
		if status != nil {
			if st := status(); st != "" {
				text = st
			}
		}
		reply := tgbotapi.NewMessage(msg.Chat.ID, text)
		s.bot.Send(reply) //nolint:errcheck
	}
}
