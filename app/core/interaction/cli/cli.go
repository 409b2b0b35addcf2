// Package cli implements the interactive terminal channel, mainly for
// local development without a bot token.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"elias/app/pkg/types"
)

type Channel struct {
	id      string
	in      io.Reader
	out     io.Writer
	counter uint64

	mu      sync.RWMutex
	handler func(types.Message)
}

func NewChannel() *Channel {
	return &Channel{id: "cli", in: os.Stdin, out: os.Stdout}
}

// NewChannelWith wires explicit streams, used by tests.
func NewChannelWith(in io.Reader, out io.Writer) *Channel {
	return &Channel{id: "cli", in: in, out: out}
}

func (c *Channel) ID() string {
	return c.id
}

// Start reads lines until EOF or context cancellation. Each non-empty
// line becomes one inbound message.
func (c *Channel) Start(ctx context.Context, handler func(types.Message)) error {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()

	fmt.Fprintln(c.out, "elias> escribe un mensaje (Ctrl+D para salir)")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			handler(types.Message{
				ID:        c.newID("cli"),
				Content:   text,
				Role:      types.MessageRoleUser,
				ChannelID: c.id,
				UserID:    "local",
				ChatID:    "local",
				RequestID: c.newID("req"),
			})
		}
	}
}

func (c *Channel) Send(_ context.Context, msg types.Message) error {
	_, err := fmt.Fprintln(c.out, msg.Content)
	return err
}

func (c *Channel) newID(prefix string) string {
	seq := atomic.AddUint64(&c.counter, 1)
	return prefix + "-" + strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(seq, 10)
}
