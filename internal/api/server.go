// Package api exposes the processing pipeline over HTTP for inspection and
// integration testing. The endpoints are stateless; every request carries
// its own logits buffer and settings.
package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/cyrup-ai/kodegen-simd/internal/logger"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	log logger.Logger
}

func NewServer(log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{log: log}
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/capabilities", s.handleCapabilities)
	e.POST("/v1/process", s.handleProcess)
	e.POST("/v1/constraints/check", s.handleConstraintCheck)
}

// RequestID assigns a uuid to requests that do not carry one and echoes it
// back in the response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(requestIDHeader, id)
			return next(c)
		}
	}
}

// RateLimit rejects requests beyond the given sustained rate with 429. One
// shared token bucket covers all clients.
func RateLimit(limit rate.Limit, burst int) echo.MiddlewareFunc {
	limiter := rate.NewLimiter(limit, burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if !limiter.Allow() {
				return writeError(c, http.StatusTooManyRequests, "rate_limited", "request rate exceeded")
			}
			return next(c)
		}
	}
}
