package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/site-ai-auditor/backend/auditor"
	"github.com/site-ai-auditor/backend/config"
	"github.com/site-ai-auditor/backend/logging"
	"github.com/site-ai-auditor/backend/middleware"
)

var (
	siteAuditor *auditor.Auditor
	rateLimiter *middleware.RateLimiter
	reqStats    *logging.Statistics
)

func setupGinMode(mode string) {
	if mode == "" {
		// Default to release mode if not specified
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	cfg := config.Load()
	setupGinMode(cfg.GinMode)

	var err error
	siteAuditor, err = auditor.New(cfg.DataDir, cfg.Weights)
	if err != nil {
		log.Fatal("Failed to initialize auditor:", err)
	}
	defer siteAuditor.Shutdown()

	rateLimiter = middleware.NewRateLimiter(2, 5) // 2 requests per second, bucket size of 5
	reqStats = logging.Initialize()

	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(rateLimiter.RateLimit())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Visitor tracking and periodic statistics persistence
	r.Use(func(c *gin.Context) {
		reqStats.TrackVisitor(c.ClientIP())

		c.Next()

		if reqStats.GetStatistics()["totalRequests"].(int)%100 == 0 {
			go reqStats.Save()
		}
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		api.POST("/audit", auditURL)

		api.GET("/statistics", func(c *gin.Context) {
			stats := reqStats.GetStatistics()
			stats["cache"] = siteAuditor.GetCacheStats()
			stats["monthly"] = siteAuditor.GetStats().GetCurrentStats()
			c.JSON(http.StatusOK, stats)
		})
	}

	log.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func auditURL(c *gin.Context) {
	log.Printf("Audit request received from: %s\n", c.ClientIP())
	var request struct {
		URL string `json:"url" binding:"required,url"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid URL provided",
		})
		return
	}

	start := time.Now()
	result, err := siteAuditor.Audit(request.URL)
	latency := float64(time.Since(start).Milliseconds())

	if err != nil {
		reqStats.TrackAudit(request.URL, latency, 0, true)

		var fetchErr *auditor.FetchError
		if errors.As(err, &fetchErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": fetchErr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to audit URL: " + err.Error(),
		})
		return
	}

	reqStats.TrackAudit(request.URL, latency, result.TotalScore, false)

	c.JSON(http.StatusOK, result)
}
