package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/service"
)

type TransferHandler struct {
	transfer *service.TransferService
}

func NewTransferHandler(transfer *service.TransferService) *TransferHandler {
	return &TransferHandler{transfer: transfer}
}

// Export 下载全量快照
func (h *TransferHandler) Export(c *gin.Context) {
	data, err := h.transfer.Export(c.Request.Context())
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=quotevault-snapshot.json")
	c.Data(http.StatusOK, "application/json", data)
}

// Import 上传快照并按 id 合并
func (h *TransferHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affected, err := h.transfer.Import(c.Request.Context(), data)
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": affected})
}
