// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dial

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all dial routes with the router.
//
// Description:
//
//	Registers all /v1/dial/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Endpoints:
//
//	POST /v1/dial/plan - Turn free text into a call plan (always 200)
//	POST /v1/dial/call - Place a call to a supplied destination
//
//	POST /v1/dial/session/start - Begin collecting missing required fields
//	POST /v1/dial/session/submit - Answer the field currently prompted
//	POST /v1/dial/session/cancel - Discard a session without calling
//	GET  /v1/dial/session/:id - Current session state and prompt
//
//	GET  /v1/dial/health - Health check
//	GET  /v1/dial/ready - Readiness check
//
// Example:
//
//	svc := dial.NewService(planner.NewClient(), telephony.NewClient(telephony.LoadConfig()))
//	handlers := dial.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	dial.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	dial := rg.Group("/dial")
	{
		// Planning and direct placement
		dial.POST("/plan", handlers.HandlePlan)
		dial.POST("/call", handlers.HandleCall)

		// Field collection sessions
		session := dial.Group("/session")
		{
			session.POST("/start", handlers.HandleSessionStart)
			session.POST("/submit", handlers.HandleSessionSubmit)
			session.POST("/cancel", handlers.HandleSessionCancel)
			session.GET("/:id", handlers.HandleSessionState)
		}

		// Health checks
		dial.GET("/health", handlers.HandleHealth)
		dial.GET("/ready", handlers.HandleReady)
	}
}
