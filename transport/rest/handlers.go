package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
)

func (that *Server) listGamesHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, game.ListAvailable())
}

func (that *Server) getGameHandler(ctx *gin.Context) {
	entry, ok := game.Lookup(ctx.Param("gameType"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

func (that *Server) getResultHandler(ctx *gin.Context) {
	log := that.logger.With("method", "getResultHandler")

	roomID := ctx.Param("roomId")

	result, err := that.results.GetByRoomID(ctx.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
			return
		}

		log.Error("failed to get result", "room_id", roomID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	ctx.JSON(http.StatusOK, result)
}
