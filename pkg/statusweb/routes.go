package statusweb

import (
	"net/http"

	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires /api/health, /api/status and /api/guilds/:id.
func registerRoutes(s *Server) {
	api := s.engine.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/status", statusHandler)
		api.GET("/guilds/:id", guildHandler)
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func statusHandler(c *gin.Context) {
	o := orchestrator.Get()
	if o == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "orchestrator not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"nodes":   o.NodeCount(),
		"players": o.PlayerCount(),
	})
}

func guildHandler(c *gin.Context) {
	o := orchestrator.Get()
	if o == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "orchestrator not initialized"})
		return
	}

	guildID := c.Param("id")
	status, ok := o.GuildStatus(guildID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active player for this guild"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guildId":      status.GuildID,
		"paused":       status.Paused,
		"queueLength":  status.QueueLength,
		"currentTrack": status.CurrentTrack,
	})
}
