// Package statusweb exposes a small Gin-backed HTTP surface reporting
// node-pool and player-registry state for operators. It never drives
// playback — it only reads the orchestrator's state.
package statusweb

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nashiradeer/hydrogen-go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Server wraps a Gin engine with the request-rate and error-handling
// middleware the bot has always applied to its HTTP surface.
type Server struct {
	engine *gin.Engine
}

var server *Server

// Init initializes the global status server.
func Init() *Server {
	server = NewServer()
	return server
}

// Get returns the global status server, or nil if Init was never called.
func Get() *Server {
	return server
}

// NewServer builds a Server with routes registered.
func NewServer() *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine}
	s.engine.Use(s.rateLimitMiddleware())
	s.setupErrorHandlers()
	registerRoutes(s)

	return s
}

// Engine returns the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// rateLimitMiddleware implements a simple fixed-window rate limiter keyed
// by client IP.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	type clientInfo struct {
		count   int
		resetAt time.Time
	}
	var mu sync.Mutex
	clients := make(map[string]*clientInfo)

	const window = 60 * time.Second
	const maxRequests = 100

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		info, exists := clients[ip]
		if !exists || now.After(info.resetAt) {
			clients[ip] = &clientInfo{count: 1, resetAt: now.Add(window)}
			mu.Unlock()
			c.Next()
			return
		}
		info.count++
		count := info.count
		mu.Unlock()

		if count > maxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) setupErrorHandlers() {
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Not Found",
			"status": 404,
		})
	})
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":  "Method Not Allowed",
			"status": 405,
		})
	})
}

// Start runs the server, blocking until it exits.
func (s *Server) Start(port string) error {
	logger.Info(fmt.Sprintf("statusweb listening on http://localhost:%s", port), "STATUSWEB")
	return s.engine.Run(":" + port)
}

// StartAsync runs the server in a background goroutine.
func (s *Server) StartAsync(port string) {
	go func() {
		if err := s.Start(port); err != nil {
			logger.Error(fmt.Sprintf("statusweb exited: %v", err), "STATUSWEB")
		}
	}()
}
