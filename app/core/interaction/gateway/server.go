// Package gateway fans inbound messages from every registered channel
// into the agent and delivers replies back to the originating channel.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"elias/app/pkg/logger"
	"elias/app/pkg/types"
)

type DefaultGateway struct {
	agent types.Agent

	mu       sync.RWMutex
	channels map[string]types.Channel

	processedMessages uint64
	lastMessageUnix   atomic.Int64
	startedUnix       atomic.Int64
}

func NewGateway(agent types.Agent) *DefaultGateway {
	return &DefaultGateway{
		agent:    agent,
		channels: make(map[string]types.Channel),
	}
}

func (g *DefaultGateway) RegisterChannel(c types.Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.ID()] = c
	logger.Info("Registered channel: %s", c.ID())
}

// Start runs every channel's poll loop and blocks until all of them
// return. Messages are dispatched synchronously inside each channel's
// handler call, so per-channel ordering is preserved.
func (g *DefaultGateway) Start(ctx context.Context) error {
	if g.agent == nil {
		return fmt.Errorf("gateway has no agent")
	}
	g.startedUnix.Store(time.Now().Unix())

	handler := func(msg types.Message) {
		atomic.AddUint64(&g.processedMessages, 1)
		g.lastMessageUnix.Store(time.Now().Unix())
		logger.Info("Received message channel=%s user=%s", msg.ChannelID, msg.UserID)

		if err := g.processAndReply(ctx, msg); err != nil {
			logger.Error("Processing failed: %v", err)
			g.sendErrorReply(ctx, msg)
		}
	}

	var wg sync.WaitGroup
	g.mu.RLock()
	for _, c := range g.channels {
		wg.Add(1)
		go func(ch types.Channel) {
			defer wg.Done()
			if err := ch.Start(ctx, handler); err != nil && ctx.Err() == nil {
				logger.Error("Channel %s error: %v", ch.ID(), err)
			}
		}(c)
	}
	g.mu.RUnlock()

	logger.Info("Gateway started all channels")
	wg.Wait()
	return nil
}

func (g *DefaultGateway) processAndReply(ctx context.Context, msg types.Message) error {
	response, err := g.agent.Process(ctx, msg)
	if err != nil {
		return fmt.Errorf("agent process: %w", err)
	}
	if strings.TrimSpace(response.Content) == "" {
		return nil
	}

	channel, exists := g.channelByID(msg.ChannelID)
	if !exists {
		return fmt.Errorf("channel not found for reply: %s", msg.ChannelID)
	}

	normalizeReply(&response, msg)
	if err := channel.Send(ctx, response); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func (g *DefaultGateway) sendErrorReply(ctx context.Context, msg types.Message) {
	channel, exists := g.channelByID(msg.ChannelID)
	if !exists {
		return
	}
	response := types.Message{
		ID:      "resp-" + msg.ID,
		Content: "❌ Algo salió mal procesando tu mensaje. Inténtalo de nuevo.",
		Role:    types.MessageRoleAssistant,
	}
	normalizeReply(&response, msg)
	if err := channel.Send(ctx, response); err != nil {
		logger.Error("Error reply delivery failed: %v", err)
	}
}

func normalizeReply(response *types.Message, request types.Message) {
	if response.ID == "" {
		response.ID = "resp-" + request.ID
	}
	if response.Role == "" {
		response.Role = types.MessageRoleAssistant
	}
	if response.ChannelID == "" {
		response.ChannelID = request.ChannelID
	}
	if response.UserID == "" {
		response.UserID = request.UserID
	}
	if response.ChatID == "" {
		response.ChatID = request.ChatID
	}
	if response.RequestID == "" {
		response.RequestID = request.RequestID
	}
}

func (g *DefaultGateway) channelByID(channelID string) (types.Channel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	channel, exists := g.channels[channelID]
	return channel, exists
}
