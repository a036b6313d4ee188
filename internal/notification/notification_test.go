package notification

import (
	"context"
	"testing"
)

func TestRouterDispatchesByChannel(t *testing.T) {
	sms := NewRecorder()
	fallback := NewRecorder()
	router := NewRouter(fallback).Route(ChannelSMS, sms)
	ctx := context.Background()

	if err := router.Send(ctx, Message{Kind: KindVerificationCode, Channel: ChannelSMS, Destination: "+15551234567", Body: "123456"}); err != nil {
		t.Fatalf("send sms: %v", err)
	}
	if err := router.Send(ctx, Message{Kind: KindVerificationCode, Channel: ChannelEmail, Destination: "a@b.c", Body: "654321"}); err != nil {
		t.Fatalf("send email: %v", err)
	}

	if msg, ok := sms.Last("+15551234567"); !ok || msg.Body != "123456" {
		t.Fatalf("expected sms delivery, got %+v", msg)
	}
	if len(sms.Messages()) != 1 {
		t.Fatalf("expected one sms, got %d", len(sms.Messages()))
	}
	if _, ok := fallback.Last("a@b.c"); !ok {
		t.Fatalf("expected email to reach fallback")
	}
}

func TestRouterWithoutFallback(t *testing.T) {
	router := NewRouter(nil)
	if err := router.Send(context.Background(), Message{Channel: "push"}); err == nil {
		t.Fatalf("expected error for unrouted channel")
	}
}

func TestLoggerNotifierNil(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("nil notifier should be a no-op: %v", err)
	}
}
