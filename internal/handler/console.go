package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/service"
)

type ConsoleHandler struct {
	console *service.ConsoleService
}

func NewConsoleHandler(console *service.ConsoleService) *ConsoleHandler {
	return &ConsoleHandler{console: console}
}

// Execute 原始 SQL 逃生通道，仅远程后端可用
func (h *ConsoleHandler) Execute(c *gin.Context) {
	var req struct {
		SQL string `json:"sql" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.console.Execute(c.Request.Context(), req.SQL)
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
