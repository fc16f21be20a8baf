// Package main provides the Telegram consultant bot entry point.
package main

import (
	"net/http"

	"github.com/abitbot/itmo-masters-bot/internal/buildinfo"
	"github.com/abitbot/itmo-masters-bot/internal/config"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures the ops HTTP routes. Updates arrive over long
// polling, so this surface carries probes and metrics only.
func setupRoutes(router *gin.Engine, cfg *config.Config, db *storage.DB, registry *prometheus.Registry) {
	// Root endpoint - service identity for anyone poking the port
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "itmo-masters-bot",
			"version": buildinfo.Short(),
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - catalog database reachable plus dataset counts.
	// Counts of zero still report ready: an empty catalog is a served
	// state, the bot answers with unavailability notices.
	readyHandler := func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "database unavailable",
			})
			return
		}

		programCount, _ := db.CountPrograms(c.Request.Context())
		curriculumCount, _ := db.CountCurriculumRows(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"catalog": gin.H{
				"programs":        programCount,
				"curriculum_rows": curriculumCount,
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.Metrics.Username, cfg.Metrics.Password),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
