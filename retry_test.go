package forceoauth

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	if p.InitialInterval != 500*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 500ms", p.InitialInterval)
	}
	if p.Multiplier != 1.5 {
		t.Errorf("Multiplier = %v, want 1.5", p.Multiplier)
	}
	if p.RandomizationFactor != 0.5 {
		t.Errorf("RandomizationFactor = %v, want 0.5", p.RandomizationFactor)
	}
	if p.MaxInterval != 10*time.Second {
		t.Errorf("MaxInterval = %v, want 10s", p.MaxInterval)
	}
	if p.MaxElapsedTime != 30*time.Second {
		t.Errorf("MaxElapsedTime = %v, want 30s", p.MaxElapsedTime)
	}
	if p.MaxRetries != 10 {
		t.Errorf("MaxRetries = %d, want 10", p.MaxRetries)
	}
	if err := p.validate(); err != nil {
		t.Errorf("validate() error = %v", err)
	}
}

func TestRetryPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *RetryPolicy)
		wantErr bool
	}{
		{"default", func(p *RetryPolicy) {}, false},
		{"zero initial interval", func(p *RetryPolicy) { p.InitialInterval = 0 }, true},
		{"multiplier below one", func(p *RetryPolicy) { p.Multiplier = 0.9 }, true},
		{"multiplier of one", func(p *RetryPolicy) { p.Multiplier = 1 }, false},
		{"negative randomization", func(p *RetryPolicy) { p.RandomizationFactor = -0.1 }, true},
		{"randomization above one", func(p *RetryPolicy) { p.RandomizationFactor = 1.1 }, true},
		{"max interval below initial", func(p *RetryPolicy) { p.MaxInterval = 100 * time.Millisecond }, true},
		{"negative elapsed cap", func(p *RetryPolicy) { p.MaxElapsedTime = -time.Second }, true},
		{"no elapsed cap", func(p *RetryPolicy) { p.MaxElapsedTime = 0 }, false},
		{"no retries", func(p *RetryPolicy) { p.MaxRetries = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultRetryPolicy()
			tt.modify(p)
			if err := p.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_NewBackOff_Intervals(t *testing.T) {
	b := DefaultRetryPolicy().newBackOff(context.Background())

	// current interval before randomization: 500ms, 750ms, 1125ms, ...
	expected := []time.Duration{500 * time.Millisecond, 750 * time.Millisecond, 1125 * time.Millisecond}
	for i, base := range expected {
		next := b.NextBackOff()
		lo := time.Duration(float64(base) * 0.5)
		hi := time.Duration(float64(base) * 1.5)
		if next < lo || next > hi {
			t.Errorf("interval %d = %v, want within [%v, %v]", i, next, lo, hi)
		}
	}
}

func TestRetryPolicy_NewBackOff_MaxIntervalCap(t *testing.T) {
	p := DefaultRetryPolicy()
	p.RandomizationFactor = 0
	p.MaxElapsedTime = 0
	p.MaxRetries = 100
	b := p.newBackOff(context.Background())

	var last time.Duration
	for i := 0; i < 20; i++ {
		last = b.NextBackOff()
		if last > DefaultMaxInterval {
			t.Fatalf("interval %d = %v exceeds cap %v", i, last, DefaultMaxInterval)
		}
	}
	if last != DefaultMaxInterval {
		t.Errorf("interval after growth = %v, want cap %v", last, DefaultMaxInterval)
	}
}

func TestRetryPolicy_NewBackOff_MaxRetries(t *testing.T) {
	p := DefaultRetryPolicy()
	p.MaxElapsedTime = 0
	b := p.newBackOff(context.Background())

	for i := 0; i < DefaultMaxRetries; i++ {
		if next := b.NextBackOff(); next == backoff.Stop {
			t.Fatalf("retry %d stopped early", i+1)
		}
	}
	if next := b.NextBackOff(); next != backoff.Stop {
		t.Errorf("retry %d = %v, want Stop", DefaultMaxRetries+1, next)
	}
}

func TestRetryPolicy_NewBackOff_Independent(t *testing.T) {
	p := DefaultRetryPolicy()
	p.MaxElapsedTime = 0
	p.MaxRetries = 1

	first := p.newBackOff(context.Background())
	_ = first.NextBackOff()
	if first.NextBackOff() != backoff.Stop {
		t.Fatal("first backoff did not stop after one retry")
	}

	second := p.newBackOff(context.Background())
	if second.NextBackOff() == backoff.Stop {
		t.Error("second backoff shares state with the first")
	}
}

func TestRetryPolicy_NewBackOff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := DefaultRetryPolicy().newBackOff(ctx)
	if next := b.NextBackOff(); next != backoff.Stop {
		t.Errorf("NextBackOff() = %v, want Stop after cancellation", next)
	}
}
