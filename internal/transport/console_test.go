package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestConsoleRelayCycle(t *testing.T) {
	in := strings.NewReader("security scored well\nnothing else to add\n.\n")
	var out bytes.Buffer
	c := NewConsole(in, &out)
	ctx := context.Background()

	if !c.IsAuthenticated(ctx, "alpha") {
		t.Fatal("IsAuthenticated() = false, want true")
	}
	if err := c.AwaitInputReady(ctx, "alpha", time.Second); err != nil {
		t.Fatalf("AwaitInputReady() error = %v", err)
	}
	if err := c.DeliverPrompt(ctx, "alpha", "assess the proposal"); err != nil {
		t.Fatalf("DeliverPrompt() error = %v", err)
	}
	if !strings.Contains(out.String(), "prompt for alpha") {
		t.Errorf("output %q missing participant header", out.String())
	}
	if !strings.Contains(out.String(), "assess the proposal") {
		t.Errorf("output %q missing prompt text", out.String())
	}

	if err := c.Submit(ctx, "alpha"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := c.AwaitResponse(ctx, "alpha", time.Second); err != nil {
		t.Fatalf("AwaitResponse() error = %v", err)
	}

	got, err := c.RetrieveResponse(ctx, "alpha")
	if err != nil {
		t.Fatalf("RetrieveResponse() error = %v", err)
	}
	want := "security scored well\nnothing else to add"
	if got != want {
		t.Errorf("RetrieveResponse() = %q, want %q", got, want)
	}
}

func TestConsoleEOFWithoutTerminator(t *testing.T) {
	c := NewConsole(strings.NewReader("partial answer"), &bytes.Buffer{})
	ctx := context.Background()

	if err := c.AwaitResponse(ctx, "alpha", time.Second); err != nil {
		t.Fatalf("AwaitResponse() error = %v", err)
	}
	got, err := c.RetrieveResponse(ctx, "alpha")
	if err != nil {
		t.Fatalf("RetrieveResponse() error = %v", err)
	}
	if got != "partial answer" {
		t.Errorf("RetrieveResponse() = %q, want %q", got, "partial answer")
	}
}

func TestConsoleRetrieveWithoutAwait(t *testing.T) {
	c := NewConsole(strings.NewReader(""), &bytes.Buffer{})
	if _, err := c.RetrieveResponse(context.Background(), "alpha"); err == nil {
		t.Error("RetrieveResponse() error = nil, want error with nothing staged")
	}
}

func TestConsoleResponseConsumedOnce(t *testing.T) {
	c := NewConsole(strings.NewReader("one\n.\n"), &bytes.Buffer{})
	ctx := context.Background()

	if err := c.AwaitResponse(ctx, "alpha", time.Second); err != nil {
		t.Fatalf("AwaitResponse() error = %v", err)
	}
	if _, err := c.RetrieveResponse(ctx, "alpha"); err != nil {
		t.Fatalf("first RetrieveResponse() error = %v", err)
	}
	if _, err := c.RetrieveResponse(ctx, "alpha"); err == nil {
		t.Error("second RetrieveResponse() error = nil, want error")
	}
}
