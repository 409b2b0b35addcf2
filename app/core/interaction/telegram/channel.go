// Package telegram implements the long-polling bot channel.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"elias/app/pkg/logger"
	"elias/app/pkg/types"
)

const defaultAPIRoot = "https://api.telegram.org"

const accessDeniedReply = "⛔ No tienes acceso a este asistente."

type Config struct {
	BotToken       string
	PollInterval   time.Duration
	TimeoutSeconds int
	APIRoot        string

	// AdminUserIDs is the allow-list. Empty means open access.
	AdminUserIDs []string
}

type Channel struct {
	cfg    Config
	id     string
	admins map[string]bool

	counter uint64
	offset  int64

	mu      sync.RWMutex
	handler func(types.Message)
}

func NewChannel(cfg Config) *Channel {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 20
	}
	if strings.TrimSpace(cfg.APIRoot) == "" {
		cfg.APIRoot = defaultAPIRoot
	}
	admins := make(map[string]bool, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			admins[trimmed] = true
		}
	}
	return &Channel{cfg: cfg, id: "telegram", admins: admins}
}

func (c *Channel) ID() string {
	return c.id
}

func (c *Channel) Start(ctx context.Context, handler func(types.Message)) error {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()

	if strings.TrimSpace(c.cfg.BotToken) == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := c.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("Telegram poll error: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Channel) Send(ctx context.Context, msg types.Message) error {
	chatID := strings.TrimSpace(msg.ChatID)
	if chatID == "" {
		chatID = strings.TrimSpace(msg.UserID)
	}
	if chatID == "" {
		return fmt.Errorf("telegram chat id is required")
	}

	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    msg.Content,
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

func (c *Channel) pollOnce(ctx context.Context) error {
	result := getUpdatesResponse{}
	offset := atomic.LoadInt64(&c.offset)
	payload := map[string]interface{}{
		"timeout": c.cfg.TimeoutSeconds,
	}
	if offset > 0 {
		payload["offset"] = offset
	}
	if err := c.call(ctx, "getUpdates", payload, &result); err != nil {
		return err
	}

	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return nil
	}

	for _, upd := range result.Result {
		if upd.UpdateID >= atomic.LoadInt64(&c.offset) {
			atomic.StoreInt64(&c.offset, upd.UpdateID+1)
		}
		if upd.Message.MessageID == 0 {
			continue
		}
		if strings.TrimSpace(upd.Message.Text) == "" {
			continue
		}

		msg := c.toMessage(upd)
		if !c.allowed(msg.UserID) {
			logger.Info("Rejected message from unauthorized user %s", msg.UserID)
			_ = c.Send(ctx, types.Message{ChatID: msg.ChatID, Content: accessDeniedReply})
			continue
		}
		handler(msg)
	}
	return nil
}

// allowed checks the admin allow-list. An empty list grants open access.
func (c *Channel) allowed(userID string) bool {
	if len(c.admins) == 0 {
		return true
	}
	return c.admins[userID]
}

func (c *Channel) toMessage(upd update) types.Message {
	return types.Message{
		ID:        c.newID("telegram"),
		Content:   strings.TrimSpace(upd.Message.Text),
		Role:      types.MessageRoleUser,
		ChannelID: c.id,
		UserID:    strconv.FormatInt(upd.Message.From.ID, 10),
		ChatID:    strconv.FormatInt(upd.Message.Chat.ID, 10),
		RequestID: c.newID("req"),
	}
}

func (c *Channel) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	url := strings.TrimRight(c.cfg.APIRoot, "/") + "/bot" + c.cfg.BotToken + "/" + method
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var base apiResponse
	if err := json.Unmarshal(respBody, &base); err != nil {
		return err
	}
	if !base.OK {
		return fmt.Errorf("telegram api error: %s", base.Description)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Channel) newID(prefix string) string {
	seq := atomic.AddUint64(&c.counter, 1)
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq)
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

type getUpdatesResponse struct {
	apiResponse
	Result []update `json:"result"`
}

type update struct {
	UpdateID int64           `json:"update_id"`
	Message  telegramMessage `json:"message"`
}

type telegramMessage struct {
	MessageID int64 `json:"message_id"`
	From      struct {
		ID int64 `json:"id"`
	} `json:"from"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Text string `json:"text"`
}
