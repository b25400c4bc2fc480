package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/service"
)

type QuoteHandler struct {
	quotes    *service.QuoteService
	lifecycle *service.LifecycleService
}

func NewQuoteHandler(quotes *service.QuoteService, lifecycle *service.LifecycleService) *QuoteHandler {
	return &QuoteHandler{
		quotes:    quotes,
		lifecycle: lifecycle,
	}
}

// quoteView 在持久化字段之外带上派生的熟悉度分档
type quoteView struct {
	model.Quote
	Band model.ConfidenceBand `json:"band"`
}

func toView(q model.Quote) quoteView {
	return quoteView{Quote: q, Band: q.Band()}
}

// List 列出摘抄，支持 category 与 search 过滤
func (h *QuoteHandler) List(c *gin.Context) {
	quotes, err := h.quotes.List(c.Request.Context(), c.Query("category"), c.Query("search"))
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	views := make([]quoteView, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, toView(q))
	}
	c.JSON(http.StatusOK, views)
}

// Create 新增摘抄
func (h *QuoteHandler) Create(c *gin.Context) {
	var req service.AddQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := h.quotes.Add(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toView(*q))
}

// Update 部分更新摘抄
func (h *QuoteHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req service.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := h.quotes.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toView(*q))
}

// Delete 删除摘抄，目标不存在也返回成功
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.quotes.Delete(c.Request.Context(), id); err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Boost 用户重读，提熟悉度并刷新访问时间
func (h *QuoteHandler) Boost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	q, err := h.lifecycle.Boost(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toView(*q))
}

// DecaySweep 触发一轮熟悉度衰减
func (h *QuoteHandler) DecaySweep(c *gin.Context) {
	affected, err := h.lifecycle.DecaySweep(c.Request.Context())
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": affected})
}

// RenderHTML 返回 Markdown 渲染后的正文
func (h *QuoteHandler) RenderHTML(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	html, err := h.quotes.RenderHTML(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
