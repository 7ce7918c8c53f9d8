package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys
//
// SECURITY WARNING: Never put access tokens into traces. Use the token
// fingerprint attribute when correlation is needed.
const (
	AttrEnvironment      = "forceoauth.environment"
	AttrAttempts         = "forceoauth.attempts"
	AttrErrorKind        = "forceoauth.error_kind"
	AttrOrganizationID   = "forceoauth.organization_id"
	AttrUserID           = "forceoauth.user_id"
	AttrInstance         = "forceoauth.instance"
	AttrTokenFingerprint = "forceoauth.token_fingerprint" //nolint:gosec // hash prefix, not the token

	// HTTP attributes (in addition to standard semantic conventions)
	AttrHTTPEndpoint   = "http.endpoint"
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddLookupAttributes adds the request side of a lookup to a span (nil-safe)
func AddLookupAttributes(span trace.Span, environment, tokenFingerprint string) {
	SetSpanAttributes(span, attribute.String(AttrEnvironment, environment))
	if tokenFingerprint != "" {
		SetSpanAttributes(span, attribute.String(AttrTokenFingerprint, tokenFingerprint))
	}
}

// AddIdentityAttributes adds the resolved identity to a span (nil-safe)
func AddIdentityAttributes(span trace.Span, organizationID, userID, instance string) {
	if organizationID != "" {
		SetSpanAttributes(span, attribute.String(AttrOrganizationID, organizationID))
	}
	if userID != "" {
		SetSpanAttributes(span, attribute.String(AttrUserID, userID))
	}
	if instance != "" {
		SetSpanAttributes(span, attribute.String(AttrInstance, instance))
	}
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, method, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}
