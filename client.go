// Package forceoauth resolves a Salesforce OAuth access token to the identity
// it was issued for, using the userinfo endpoint of the production or sandbox
// login host.
//
// Besides the identity fields, the returned UserInfo carries the versioned
// partner API endpoint and the instance name parsed from its host, which
// callers use to reach the org's API gateway.
//
// Example usage:
//
//	client, err := forceoauth.NewClient(&forceoauth.Config{
//	    ConnectTimeout: 5 * time.Second,
//	    ReadTimeout:    20 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	info, err := client.Lookup(ctx, accessToken, false)
//	if errors.Is(err, forceoauth.ErrBadOAuthToken) {
//	    // prompt for re-authentication
//	}
package forceoauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/giantswarm/force-oauth/instrumentation"
	"github.com/giantswarm/force-oauth/internal/util"
)

// Client looks up userinfo for access tokens. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	retryPolicy *RetryPolicy
	limiter     *rate.Limiter // nil when rate limiting is disabled
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *instrumentation.Metrics
}

// NewClient creates a new userinfo client. A nil config uses all defaults.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	config, err := applyDefaults(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(config.ConnectTimeout, config.ReadTimeout)
	}

	var limiter *rate.Limiter
	if config.RateLimit.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit.Rate), config.RateLimit.Burst)
	}

	return &Client{
		httpClient:  httpClient,
		retryPolicy: config.RetryPolicy,
		limiter:     limiter,
		logger:      config.Logger,
		tracer:      config.Instrumentation.Tracer("client"),
		metrics:     config.Instrumentation.Metrics(),
	}, nil
}

// newHTTPClient builds the shared transport. The connect timeout covers dialing
// and the TLS handshake; the read timeout covers waiting for response headers.
func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// authorizedClient returns an HTTP client that sends accessToken as a Bearer
// credential over the shared transport.
func (c *Client) authorizedClient(accessToken string) *http.Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: source,
			Base:   c.httpClient.Transport,
		},
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
		Timeout:       c.httpClient.Timeout,
	}
}

// lookupCall is the working state of one Lookup invocation.
type lookupCall struct {
	httpClient  *http.Client
	accessToken string
	env         Environment
	endpoint    string
	attempts    int
	lastStatus  int
}

// Lookup fetches the identity behind accessToken from the production
// (sandbox=false) or sandbox userinfo endpoint. Transient failures are retried
// according to the retry policy. The returned error is one of
// *BadOAuthTokenError, *RemoteError, *TransportError or *ConfigurationError.
func (c *Client) Lookup(ctx context.Context, accessToken string, sandbox bool) (*UserInfo, error) {
	env := EnvironmentFor(sandbox)
	fingerprint := util.Fingerprint(accessToken, tokenFingerprintLength)

	ctx, span := c.tracer.Start(ctx, "forceoauth.lookup", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	instrumentation.AddLookupAttributes(span, env.String(), fingerprint)

	start := time.Now()
	call := &lookupCall{
		httpClient:  c.authorizedClient(accessToken),
		accessToken: accessToken,
		env:         env,
		endpoint:    EndpointFor(env),
	}

	info, err := c.lookup(ctx, call)

	durationMs := float64(time.Since(start).Microseconds()) / 1000
	instrumentation.AddHTTPAttributes(span, http.MethodGet, call.endpoint, call.lastStatus)
	instrumentation.SetSpanAttributes(span, attribute.Int(instrumentation.AttrAttempts, call.attempts))

	if err != nil {
		kind := errorKind(err)
		c.metrics.RecordLookup(ctx, env.String(), kind, call.attempts, durationMs)
		instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrErrorKind, kind))
		instrumentation.RecordError(span, err)
		return nil, err
	}

	c.metrics.RecordLookup(ctx, env.String(), "success", call.attempts, durationMs)
	instrumentation.AddIdentityAttributes(span, info.OrganizationID, info.UserID, info.Instance)
	instrumentation.SetSpanSuccess(span)
	return info, nil
}

func (c *Client) lookup(ctx context.Context, call *lookupCall) (*UserInfo, error) {
	if call.accessToken == "" {
		return nil, &BadOAuthTokenError{
			Code:             ErrorCodeMissingOAuthToken,
			TokenFingerprint: util.Fingerprint("", tokenFingerprintLength),
		}
	}

	result, err := c.execute(ctx, call)
	if err != nil {
		return nil, err
	}

	var info UserInfo
	if err := json.Unmarshal([]byte(result.body), &info); err != nil {
		return nil, &RemoteError{
			StatusCode: result.statusCode,
			Body:       util.SafeTruncate(result.body, maxLoggedBodyLength),
			Err:        fmt.Errorf("failed to decode user info: %w", err),
		}
	}

	if err := c.enrich(ctx, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// execute runs the GET under the retry policy and returns the successful
// result, or the classified error of the last attempt.
func (c *Client) execute(ctx context.Context, call *lookupCall) (attemptResult, error) {
	env := call.env.String()

	operation := func() (attemptResult, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return attemptResult{}, backoff.Permanent(&TransportError{Err: fmt.Errorf("rate limiter: %w", err)})
			}
		}

		call.attempts++
		result, err := call.do(ctx)
		if err != nil {
			c.metrics.RecordAttempt(ctx, env, 0)
			transportErr := &TransportError{Err: err}
			if ctx.Err() != nil {
				return result, backoff.Permanent(transportErr)
			}
			return result, transportErr
		}

		call.lastStatus = result.statusCode
		c.metrics.RecordAttempt(ctx, env, result.statusCode)

		switch {
		case result.successful():
			return result, nil
		case result.transient():
			return result, result.classify(call.accessToken)
		default:
			return result, backoff.Permanent(result.classify(call.accessToken))
		}
	}

	notify := func(err error, wait time.Duration) {
		c.metrics.RecordRetry(ctx, env)
		c.logger.Debug("Retrying userinfo request",
			"environment", env,
			"attempt", call.attempts,
			"status", call.lastStatus,
			"wait", wait,
			"error", err)
	}

	result, err := backoff.RetryNotifyWithData(operation, c.retryPolicy.newBackOff(ctx), notify)
	if err == nil {
		return result, nil
	}

	if !isLookupError(err) {
		// the backoff loop reports caller cancellation as the bare context error
		err = &TransportError{Err: err}
	}

	var badToken *BadOAuthTokenError
	switch {
	case errors.As(err, &badToken):
		c.logger.Info("Userinfo endpoint rejected access token",
			"environment", env,
			"code", badToken.Code,
			"status", badToken.StatusCode,
			"token_fingerprint", badToken.TokenFingerprint)
	case call.attempts > 1:
		c.logger.Warn("Userinfo request failed after retries",
			"environment", env,
			"attempts", call.attempts,
			"error", err)
	}
	return attemptResult{}, err
}

// do performs one GET and buffers the response body.
func (call *lookupCall) do(ctx context.Context) (attemptResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, call.endpoint, nil)
	if err != nil {
		return attemptResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := call.httpClient.Do(req)
	if err != nil {
		return attemptResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	result := attemptResult{statusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		// the status is known, so this surfaces as a response error
		result.readErr = fmt.Errorf("failed to read response body: %w", err)
	}
	result.body = string(body)

	return result, nil
}
