package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"elias/app/pkg/types"
)

func TestStartDispatchesLines(t *testing.T) {
	in := strings.NewReader("hola\n\n  \ncrear tarea\n")
	var out bytes.Buffer
	ch := NewChannelWith(in, &out)

	var received []types.Message
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ch.Start(context.Background(), func(msg types.Message) {
			received = append(received, msg)
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("start did not return on EOF")
	}

	if len(received) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(received))
	}
	if received[0].Content != "hola" || received[1].Content != "crear tarea" {
		t.Fatalf("unexpected contents: %+v", received)
	}
	if received[0].ChannelID != "cli" || received[0].UserID != "local" {
		t.Fatalf("unexpected addressing: %+v", received[0])
	}
}

func TestSendWritesToOutput(t *testing.T) {
	var out bytes.Buffer
	ch := NewChannelWith(strings.NewReader(""), &out)
	if err := ch.Send(context.Background(), types.Message{Content: "respuesta"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out.String(), "respuesta") {
		t.Fatalf("output: %q", out.String())
	}
}
