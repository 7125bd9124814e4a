package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (that *Server) pingHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, "pong")
}

func (that *Server) healthHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": that.environment,
	})
}
