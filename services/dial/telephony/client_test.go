// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig(apiBase string) Config {
	return Config{
		AccountSID:  "ACxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
		AuthToken:   "secret-token",
		DefaultFrom: "+15550001111",
		APIBase:     apiBase,
	}
}

func TestPlaceCall_CredentialsCheckedFirst(t *testing.T) {
	// Credentials missing AND destination missing: credentials win.
	c := NewClient(Config{})

	result := c.PlaceCall(context.Background(), "", PlaceOptions{})

	if result.Error != ErrCodeMissingCredentials {
		t.Errorf("Error = %q, want %q", result.Error, ErrCodeMissingCredentials)
	}
	if result.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want 500", result.HTTPStatus)
	}
}

func TestPlaceCall_MissingDestination(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:0"))

	result := c.PlaceCall(context.Background(), "   ", PlaceOptions{})

	if result.Error != ErrCodeMissingDestination {
		t.Errorf("Error = %q, want %q", result.Error, ErrCodeMissingDestination)
	}
	if result.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, want 400", result.HTTPStatus)
	}
}

func TestPlaceCall_MissingSource(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.DefaultFrom = ""
	c := NewClient(cfg)

	result := c.PlaceCall(context.Background(), "+15551234567", PlaceOptions{})

	if result.Error != ErrCodeMissingSource {
		t.Errorf("Error = %q, want %q", result.Error, ErrCodeMissingSource)
	}
}

func TestPlaceCall_Success(t *testing.T) {
	var gotForm map[string]string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotForm = map[string]string{
			"To":         r.PostFormValue("To"),
			"From":       r.PostFormValue("From"),
			"Url":        r.PostFormValue("Url"),
			"SendDigits": r.PostFormValue("SendDigits"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid": "CA0123456789", "status": "queued", "to": "+15551234567"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	result := c.PlaceCall(context.Background(), "+15551234567", PlaceOptions{SendDigits: "ww1"})

	if result.Error != "" {
		t.Fatalf("Error = %q, want success", result.Error)
	}
	if result.Sid != "CA0123456789" || result.Status != "queued" {
		t.Errorf("result = %+v", result)
	}
	if result.To != "+15551234567" || result.From != "+15550001111" {
		t.Errorf("To/From = %q/%q", result.To, result.From)
	}
	if gotUser != "ACxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx" || gotPass != "secret-token" {
		t.Errorf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotForm["To"] != "+15551234567" || gotForm["From"] != "+15550001111" {
		t.Errorf("form = %v", gotForm)
	}
	if gotForm["Url"] == "" {
		t.Error("Url form field empty, want default voice URL")
	}
	if gotForm["SendDigits"] != "ww1" {
		t.Errorf("SendDigits = %q", gotForm["SendDigits"])
	}
}

func TestPlaceCall_StatusDefaultsToQueued(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sid": "CA42"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	result := c.PlaceCall(context.Background(), "+15551234567", PlaceOptions{})

	if result.Status != "queued" {
		t.Errorf("Status = %q, want queued default", result.Status)
	}
}

func TestPlaceCall_ProviderErrorPreservesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code": 21211, "message": "The 'To' number is not a valid phone number.", "status": 422}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	result := c.PlaceCall(context.Background(), "+15551234567", PlaceOptions{})

	if result.Error != "The 'To' number is not a valid phone number." {
		t.Errorf("Error = %q, want provider message", result.Error)
	}
	if result.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus = %d, want provider status preserved", result.HTTPStatus)
	}
}

func TestPlaceCall_ProviderErrorWithoutMessageGetsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	result := c.PlaceCall(context.Background(), "+15551234567", PlaceOptions{})

	if result.Error != "twilio-error" {
		t.Errorf("Error = %q, want generic fallback", result.Error)
	}
	if result.HTTPStatus != http.StatusBadGateway {
		t.Errorf("HTTPStatus = %d", result.HTTPStatus)
	}
}

func TestPlaceCall_TransportFailureIsInvalidRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(testConfig(srv.URL))
	result := c.PlaceCall(context.Background(), "+15551234567", PlaceOptions{})

	if result.Error != ErrCodeInvalidRequest {
		t.Errorf("Error = %q, want %q", result.Error, ErrCodeInvalidRequest)
	}
	if result.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, want 400", result.HTTPStatus)
	}
}

func TestPlaceCall_ExplicitOverridesWin(t *testing.T) {
	var gotFrom, gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotFrom = r.PostFormValue("From")
		gotURL = r.PostFormValue("Url")
		w.Write([]byte(`{"sid": "CA1", "status": "queued"}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.DefaultURL = "https://example.com/default.xml"
	c := NewClient(cfg)

	result := c.PlaceCall(context.Background(), "+15551234567", PlaceOptions{
		From: "+15559998888",
		URL:  "https://example.com/override.xml",
	})

	if result.Error != "" {
		t.Fatalf("Error = %q", result.Error)
	}
	if gotFrom != "+15559998888" {
		t.Errorf("From = %q, want override", gotFrom)
	}
	if gotURL != "https://example.com/override.xml" {
		t.Errorf("Url = %q, want override", gotURL)
	}
}
