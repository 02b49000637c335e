package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/app"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/transport/http/middleware"
)

// GenerateHandler is the relay endpoint. Unlike the rest of the API it
// answers with the bare {result}/{error} wire shape, which existing
// dashboard clients depend on.
type GenerateHandler struct {
	relayService *app.RelayService
}

type GenerateRequest struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
	Employee string `json:"employee"`
}

func NewGenerateHandler(relayService *app.RelayService) *GenerateHandler {
	return &GenerateHandler{relayService: relayService}
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 provider 或 prompt"})
		return
	}

	userID, _ := getUserIDFromContext(c)
	result, err := h.relayService.Generate(c.Request.Context(), app.GenerateInput{
		Provider: req.Provider,
		Prompt:   req.Prompt,
		Employee: req.Employee,
		UserID:   userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingField):
			c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 provider 或 prompt"})
		case errors.Is(err, app.ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, gin.H{"error": "未知 provider"})
		default:
			// Upstream detail stays server-side.
			log.Printf("generate dispatch failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "调用 AI API 出错"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}
