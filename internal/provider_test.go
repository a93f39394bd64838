package internal

import (
	"context"
	"errors"
	"testing"
)

func TestStaticModelComplete(t *testing.T) {
	m := &StaticModel{
		Answers:  map[string]string{"ping": "pong"},
		Fallback: "dunno",
	}

	got, err := m.Complete(context.Background(), "ping")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "pong" {
		t.Errorf("answer = %q, want pong", got)
	}

	got, err = m.Complete(context.Background(), "other")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "dunno" {
		t.Errorf("fallback = %q, want dunno", got)
	}
}

func TestStaticModelStream(t *testing.T) {
	m := &StaticModel{Answers: map[string]string{"ping": "pong"}}

	ch, err := m.Stream(context.Background(), "ping")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	var got string
	for chunk := range ch {
		got += chunk
	}
	if got != "pong" {
		t.Errorf("streamed = %q, want pong", got)
	}
}

func TestStaticModelGenerateObject(t *testing.T) {
	m := &StaticModel{}

	var v verdict
	if err := m.GenerateObject(context.Background(), "grade this", &v); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSupportedProvider(t *testing.T) {
	for _, name := range SupportedProviders() {
		if !SupportedProvider(name) {
			t.Errorf("%q not supported", name)
		}
	}
	if SupportedProvider("bogus") {
		t.Error("bogus reported as supported")
	}
	if SupportedProvider("") {
		t.Error("empty name reported as supported")
	}
}
