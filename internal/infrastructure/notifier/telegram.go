package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const channelTelegram = "telegram"

type TelegramConfig struct {
	BaseURL  string
	BotToken string
	ChatIDs  []string
	Timeout  time.Duration
}

// TelegramNotifier posts operator messages to every configured chat.
// Failures are logged per chat and never returned.
type TelegramNotifier struct {
	baseURL  string
	token    string
	chatIDs  []string
	client   *http.Client
	logger   *slog.Logger
	failures FailureRecorder
}

func NewTelegramNotifier(cfg TelegramConfig, logger *slog.Logger, failures FailureRecorder) *TelegramNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TelegramNotifier{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.BotToken,
		chatIDs:  cfg.ChatIDs,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "telegram_notifier"),
		failures: failures,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, message string) {
	for _, chatID := range n.chatIDs {
		if err := n.send(ctx, chatID, message); err != nil {
			n.logger.Error("failed to send telegram message", "chat_id", chatID, "error", err)
			if n.failures != nil {
				n.failures.RecordNotificationFailure(channelTelegram)
			}
		}
	}
}

func (n *TelegramNotifier) send(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(telegramMessage{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("unexpected response with status %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !decoded.OK {
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, decoded.Description)
	}
	return nil
}

// LogNotifier is used when no chat channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, message string) {
	n.logger.Info("operator notification", "message", message)
}
