// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for the force-oauth client.
//
// When disabled (the default), no-op providers are used and recording costs nothing.
// When enabled, injected SDK providers are used, falling back to the global
// providers registered with otel.SetTracerProvider / otel.SetMeterProvider.
//
// # Quick Start
//
//	import "github.com/giantswarm/force-oauth/instrumentation"
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "billing-sync",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
//	client, err := forceoauth.NewClient(&forceoauth.Config{Instrumentation: inst})
//
// # Available Metrics
//
//   - forceoauth.lookup.total{environment, result} - Completed lookups
//   - forceoauth.lookup.duration{environment, attempts} - Lookup duration in milliseconds
//   - forceoauth.lookup.attempts{environment, status} - HTTP attempts (status 0 = transport failure)
//   - forceoauth.lookup.retries{environment} - Backoff waits
//   - forceoauth.instance.parse_failures - Partner URLs without a usable host label
//
// # Traces
//
// Each lookup produces a "forceoauth.lookup" span carrying the environment,
// token fingerprint, final HTTP status, attempt count and, on success, the
// organization, user and instance. Access tokens are never recorded.
package instrumentation
