// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command dial starts the Aleutian Dial API server.
//
// Aleutian Dial turns a free-text request into a structured call plan via an
// LLM, collects missing required fields one at a time, and places the call
// through Twilio.
//
// Usage:
//
//	go run ./cmd/dial
//	go run ./cmd/dial -port 9090
//
// With planning enabled:
//
//	OPENAI_API_KEY=sk-... go run ./cmd/dial
//
// With call placement enabled:
//
//	TWILIO_ACCOUNT_SID=AC... TWILIO_AUTH_TOKEN=... TWILIO_FROM_NUMBER=+1555... go run ./cmd/dial
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/dial/health
//
//	# Plan a call
//	curl -X POST http://localhost:8080/v1/dial/plan \
//	  -H "Content-Type: application/json" \
//	  -d '{"natural": "Call Pizza Palace and order a large pepperoni"}'
//
//	# Place a call directly
//	curl -X POST http://localhost:8080/v1/dial/call \
//	  -H "Content-Type: application/json" \
//	  -d '{"to": "+15551234567"}'
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/AleutianDial/services/dial"
	"github.com/AleutianAI/AleutianDial/services/dial/planner"
	"github.com/AleutianAI/AleutianDial/services/dial/telephony"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagator so trace context flows from incoming HTTP
	// headers through all handlers and both collaborator calls.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Collaborator adapters from environment configuration. Neither is
	// load-bearing at startup: planning degrades to default plans, and
	// placement rejects with missing-credentials at call time.
	planClient := planner.NewClient()
	twilioCfg := telephony.LoadConfig()
	callClient := telephony.NewClient(twilioCfg)

	svc := dial.NewService(planClient, callClient)
	handlers := dial.NewHandlers(svc)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("aleutian-dial"))
	if *debug {
		router.Use(gin.Logger())
	}

	// Register routes under /v1/dial
	v1 := router.Group("/v1")
	dial.RegisterRoutes(v1, handlers)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(*port, callClient.Configured())

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down Aleutian Dial server")
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting Aleutian Dial server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func printBanner(port int, telephonyConfigured bool) {
	placementStatus := "DISABLED (set TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN to enable)"
	if telephonyConfigured {
		placementStatus = "ENABLED (Twilio configured)"
	}

	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                       ALEUTIAN DIAL SERVER                        ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Natural language call planning with LLM-backed slot filling.     ║
║  Call Placement: %-47s ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/dial/health               │  ║
║  │                                                             │  ║
║  │ # Plan a call from natural language                         │  ║
║  │ curl -X POST http://localhost:%d/v1/dial/plan \       │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"natural": "Call Pizza Palace for a large pizza"}'   │  ║
║  │                                                             │  ║
║  │ # Place a call directly                                     │  ║
║  │ curl -X POST http://localhost:%d/v1/dial/call \       │  ║
║  │   -d '{"to": "+15551234567"}'                               │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Plan: POST /v1/dial/plan                                     ║
║  ├── Call: POST /v1/dial/call                                     ║
║  ├── Collect: /v1/dial/session/{start,submit,cancel}, GET /:id    ║
║  └── Ops: /v1/dial/health, /v1/dial/ready, /metrics               ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, placementStatus, port, port, port)
}
