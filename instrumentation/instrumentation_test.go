package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "default config",
			config: Config{
				Enabled: false,
			},
			wantErr: false,
		},
		{
			name: "with service name and version",
			config: Config{
				Enabled:        true,
				ServiceName:    "billing-sync",
				ServiceVersion: "1.0.0",
			},
			wantErr: false,
		},
		{
			name: "empty service name gets default",
			config: Config{
				Enabled:        true,
				ServiceName:    "",
				ServiceVersion: "",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				if inst == nil {
					t.Error("New() returned nil instrumentation")
					return
				}

				if inst.Meter("client") == nil {
					t.Error("Meter('client') returned nil")
				}
				if inst.Tracer("client") == nil {
					t.Error("Tracer('client') returned nil")
				}
				if inst.Metrics() == nil {
					t.Error("Metrics() returned nil")
				}
				if inst.Resource() == nil {
					t.Error("Resource() returned nil")
				}
				if inst.TracerProvider() == nil {
					t.Error("TracerProvider() returned nil")
				}
				if inst.MeterProvider() == nil {
					t.Error("MeterProvider() returned nil")
				}

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := inst.Shutdown(ctx); err != nil {
					t.Errorf("Shutdown() error = %v", err)
				}
				// Shutdown is idempotent
				if err := inst.Shutdown(ctx); err != nil {
					t.Errorf("Second Shutdown() error = %v", err)
				}
			}
		})
	}
}

func TestNewNoop(t *testing.T) {
	inst := NewNoop()
	if inst == nil {
		t.Fatal("NewNoop() returned nil")
	}

	ctx := context.Background()
	inst.Metrics().RecordLookup(ctx, "production", "success", 1, 12.5)
	inst.Metrics().RecordAttempt(ctx, "production", 200)
	inst.Metrics().RecordRetry(ctx, "sandbox")
	inst.Metrics().RecordInstanceParseFailure(ctx)

	_, span := inst.Tracer("client").Start(ctx, "noop-span")
	if span.SpanContext().IsValid() {
		t.Error("no-op tracer produced a valid span context")
	}
	span.End()

	if err := inst.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestInstrumentation_InjectedTracerProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	inst, err := New(Config{Enabled: true, TracerProvider: tp})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := inst.Tracer("client").Start(context.Background(), "forceoauth.lookup")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	if got := spans[0].InstrumentationScope.Name; got != "github.com/giantswarm/force-oauth/client" {
		t.Errorf("scope = %q, want %q", got, "github.com/giantswarm/force-oauth/client")
	}

	if err := inst.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// the injected provider was shut down with the instrumentation
	_, span = tp.Tracer("after").Start(context.Background(), "after-shutdown")
	defer span.End()
	if span.IsRecording() {
		t.Error("provider still recording spans after Shutdown()")
	}
}

type failingShutdown struct {
	*sdktrace.TracerProvider
	err error
}

func (f failingShutdown) Shutdown(ctx context.Context) error {
	_ = f.TracerProvider.Shutdown(ctx)
	return f.err
}

func TestInstrumentation_ShutdownError(t *testing.T) {
	wantErr := errors.New("exporter unavailable")
	inst, err := New(Config{
		Enabled:        true,
		TracerProvider: failingShutdown{TracerProvider: sdktrace.NewTracerProvider(), err: wantErr},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := inst.Shutdown(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Shutdown() error = %v, want %v", err, wantErr)
	}
	// only the first call runs the shutdown functions
	if err := inst.Shutdown(context.Background()); err != nil {
		t.Errorf("Second Shutdown() error = %v, want nil", err)
	}
}

func TestInstrumentation_ConcurrentAccess(t *testing.T) {
	inst, err := New(Config{
		Enabled:        true,
		ServiceName:    "concurrent-test",
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	done := make(chan bool)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				env := fmt.Sprintf("env-%d", id%2)
				inst.Metrics().RecordAttempt(ctx, env, 200)
				inst.Metrics().RecordLookup(ctx, env, "success", 1, float64(j))

				_, span := inst.Tracer("client").Start(ctx, "concurrent-span")
				span.End()
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestConfig_Defaults(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if err := inst.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}()

	if inst.config.ServiceName != DefaultServiceName {
		t.Errorf("Default ServiceName = %q, want %q", inst.config.ServiceName, DefaultServiceName)
	}
	if inst.config.ServiceVersion != DefaultServiceVersion {
		t.Errorf("Default ServiceVersion = %q, want %q", inst.config.ServiceVersion, DefaultServiceVersion)
	}
}

func BenchmarkMetrics_RecordLookup(b *testing.B) {
	inst, _ := New(Config{Enabled: true})
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	metrics := inst.Metrics()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		metrics.RecordLookup(ctx, "production", "success", 1, 123.45)
	}
}

func BenchmarkMetrics_RecordLookup_NoOp(b *testing.B) {
	inst := NewNoop()

	ctx := context.Background()
	metrics := inst.Metrics()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		metrics.RecordLookup(ctx, "production", "success", 1, 123.45)
	}
}

func BenchmarkTracing_SpanWithAttributes(b *testing.B) {
	inst, _ := New(Config{Enabled: true})
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	tracer := inst.Tracer("client")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, span := tracer.Start(ctx, "forceoauth.lookup")
		AddLookupAttributes(span, "production", "0123456789abcdef")
		AddIdentityAttributes(span, "00Dx0000000BV7z", "005x00000012Q9P", "na42")
		SetSpanSuccess(span)
		span.End()
	}
}
