// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telephony places outbound calls through the Twilio REST API and
// maps every outcome, including its own validation failures, into a
// normalized CallResult. Nothing in this package propagates as a crash.
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianDial/services/dial/plan"
)

// Error codes surfaced in CallResult.Error for failures local to this layer.
// Provider failures carry the provider's own message instead.
const (
	ErrCodeMissingCredentials = "missing-credentials"
	ErrCodeMissingDestination = "missing-destination"
	ErrCodeMissingSource      = "missing-source"
	ErrCodeInvalidRequest     = "invalid-request"
)

const (
	defaultAPIBase = "https://api.twilio.com/2010-04-01"

	// defaultVoiceURL answers the call with Twilio's demo TwiML when no
	// callback URL is configured or supplied.
	defaultVoiceURL = "http://demo.twilio.com/docs/voice.xml"

	// statusQueued is the assumed provider status when the response omits one.
	statusQueued = "queued"
)

// Config holds provider-account configuration, resolved from the environment.
type Config struct {
	AccountSID  string
	AuthToken   string
	DefaultFrom string
	DefaultURL  string

	// APIBase overrides the Twilio endpoint. Tests point it at a mock server.
	APIBase string
}

// LoadConfig reads provider configuration from environment variables.
//
// Description:
//
//	TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN identify the provider account;
//	their absence is not fatal here, only at call time (missing-credentials).
//	TWILIO_FROM_NUMBER is the default caller id and TWILIO_VOICE_URL the
//	default call payload URL; both optional.
func LoadConfig() Config {
	cfg := Config{
		AccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		DefaultFrom: os.Getenv("TWILIO_FROM_NUMBER"),
		DefaultURL:  os.Getenv("TWILIO_VOICE_URL"),
		APIBase:     defaultAPIBase,
	}
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		slog.Warn("Twilio credentials not configured, call placement will be rejected")
	}
	return cfg
}

// PlaceOptions carries optional per-call metadata.
type PlaceOptions struct {
	// From overrides the configured default caller id.
	From string

	// URL overrides the configured default call payload URL.
	URL string

	// SendDigits is a DTMF sequence forwarded to the provider, e.g. "ww1#".
	SendDigits string
}

// twilioResponse covers both the success and error shapes of the Calls API.
type twilioResponse struct {
	Sid     string `json:"sid"`
	Status  string `json:"status"`
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Client places calls through the Twilio Calls API using raw net/http.
//
// Thread Safety: Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient creates a Client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
	}
}

// Configured reports whether a provider account identity is available.
func (c *Client) Configured() bool {
	return c.cfg.AccountSID != "" && c.cfg.AuthToken != ""
}

// PlaceCall submits a validated destination number to the telephony provider.
//
// Description:
//
//	Validation order is fixed: missing credentials are reported before a
//	missing destination, which is reported before a missing source. The
//	destination is expected to be normalized already; this layer does not
//	reshape it. Single attempt, no retry; a transport or parse failure
//	surfaces as invalid-request rather than an error return.
//
// Outputs:
//   - *plan.CallResult: Always non-nil. Error is empty on provider
//     acceptance; otherwise it carries a local error code or the provider's
//     message, with HTTPStatus set to the code the serving layer should use.
//
// Thread Safety: This method is safe for concurrent use.
func (c *Client) PlaceCall(ctx context.Context, to string, opts PlaceOptions) *plan.CallResult {
	ctx, span := otel.Tracer("aleutian.dial").Start(ctx, "telephony.PlaceCall")
	defer span.End()

	startTime := time.Now()
	result := c.placeCall(ctx, to, opts)
	recordPlacement(result, time.Since(startTime))

	if result.Error != "" {
		span.SetStatus(codes.Error, result.Error)
		slog.Warn("Call placement failed",
			slog.String("error", result.Error),
			slog.Int("http_status", result.HTTPStatus))
	} else {
		span.SetAttributes(
			attribute.String("call_sid", result.Sid),
			attribute.String("status", result.Status),
		)
		slog.Info("Call placed",
			slog.String("call_sid", result.Sid),
			slog.String("status", result.Status))
	}
	return result
}

func (c *Client) placeCall(ctx context.Context, to string, opts PlaceOptions) *plan.CallResult {
	// Credentials check precedes all other validation.
	if !c.Configured() {
		return &plan.CallResult{
			Status:     "failed",
			Error:      ErrCodeMissingCredentials,
			HTTPStatus: http.StatusInternalServerError,
		}
	}

	to = strings.TrimSpace(to)
	if to == "" {
		return &plan.CallResult{
			Status:     "failed",
			Error:      ErrCodeMissingDestination,
			HTTPStatus: http.StatusBadRequest,
		}
	}

	from := strings.TrimSpace(opts.From)
	if from == "" {
		from = strings.TrimSpace(c.cfg.DefaultFrom)
	}
	if from == "" {
		return &plan.CallResult{
			Status:     "failed",
			Error:      ErrCodeMissingSource,
			HTTPStatus: http.StatusBadRequest,
		}
	}

	voiceURL := strings.TrimSpace(opts.URL)
	if voiceURL == "" {
		voiceURL = strings.TrimSpace(c.cfg.DefaultURL)
	}
	if voiceURL == "" {
		voiceURL = defaultVoiceURL
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Url", voiceURL)
	if opts.SendDigits != "" {
		form.Set("SendDigits", opts.SendDigits)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.cfg.APIBase, c.cfg.AccountSID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return invalidRequest(err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return invalidRequest(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return invalidRequest(err)
	}

	var tw twilioResponse
	if jsonErr := json.Unmarshal(bodyBytes, &tw); jsonErr != nil && resp.StatusCode < 300 {
		// Accepted but unparsable body: treat as a local parse failure.
		return invalidRequest(jsonErr)
	}

	if resp.StatusCode >= 300 {
		message := strings.TrimSpace(tw.Message)
		if message == "" {
			message = "twilio-error"
		}
		return &plan.CallResult{
			Status:     "failed",
			To:         to,
			From:       from,
			Error:      message,
			HTTPStatus: resp.StatusCode,
		}
	}

	status := tw.Status
	if status == "" {
		status = statusQueued
	}
	return &plan.CallResult{
		Sid:        tw.Sid,
		Status:     status,
		To:         to,
		From:       from,
		HTTPStatus: http.StatusOK,
	}
}

func invalidRequest(err error) *plan.CallResult {
	slog.Debug("Placement request failed locally", slog.String("error", err.Error()))
	return &plan.CallResult{
		Status:     "failed",
		Error:      ErrCodeInvalidRequest,
		HTTPStatus: http.StatusBadRequest,
	}
}
