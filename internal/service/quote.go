package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quotevault/backend/config"
	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/eventbus"
	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/repository"
	"github.com/yuin/goldmark"
)

// QuoteService 统一的摘抄读写入口。读路径在远程失败时回退本地，
// 写路径不回退：主后端在哪写到哪，失败就报给调用方。
type QuoteService struct {
	cfg      *config.Config
	primary  *Backend
	fallback *Backend
	bus      *eventbus.QuoteEventBus
	now      func() time.Time
	markdown goldmark.Markdown
}

func NewQuoteService(cfg *config.Config, backends *Backends, bus *eventbus.QuoteEventBus) *QuoteService {
	return &QuoteService{
		cfg:      cfg,
		primary:  backends.Primary,
		fallback: backends.Fallback,
		bus:      bus,
		now:      time.Now,
		markdown: goldmark.New(),
	}
}

type AddQuoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Comment  string `json:"comment"`
	Category string `json:"category"`
	IsPinned bool   `json:"is_pinned"`
}

// UpdateQuoteRequest 部分更新，nil 字段保持原值
type UpdateQuoteRequest struct {
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Author     *string  `json:"author"`
	Comment    *string  `json:"comment"`
	Category   *string  `json:"category"`
	IsPinned   *bool    `json:"is_pinned"`
	Confidence *float64 `json:"confidence"`
}

func (s *QuoteService) List(ctx context.Context, category, search string) ([]model.Quote, error) {
	filter := repository.QuoteFilter{Category: category, Search: search}

	quotes, err := s.primary.Quotes.List(filter)
	if err != nil && s.fallback != nil {
		s.publishFallback(ctx, "listQuotes", err)
		quotes, err = s.fallback.Quotes.List(filter)
		if err != nil {
			return nil, apperr.NewBackendUnavailable("listQuotes", err)
		}
		return quotes, nil
	}
	if err != nil {
		return nil, apperr.NewBackendUnavailable("listQuotes", err)
	}
	return quotes, nil
}

func (s *QuoteService) Get(ctx context.Context, id int64) (*model.Quote, error) {
	q, err := s.primary.Quotes.Get(id)
	if errors.Is(err, repository.ErrNotFound) {
		// 远程明确答复“没有”不算后端故障，不回退
		return nil, apperr.NewNotFound("quote", id)
	}
	if err != nil && s.fallback != nil {
		s.publishFallback(ctx, "getQuote", err)
		q, err = s.fallback.Quotes.Get(id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("quote", id)
		}
		if err != nil {
			return nil, apperr.NewBackendUnavailable("getQuote", err)
		}
		return q, nil
	}
	if err != nil {
		return nil, apperr.NewBackendUnavailable("getQuote", err)
	}
	return q, nil
}

func (s *QuoteService) Add(ctx context.Context, req AddQuoteRequest) (*model.Quote, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.NewInvalidFormat("content is required")
	}
	category := req.Category
	if category == "" {
		category = model.SentinelCategory
	}
	if err := s.ensureCategory(category); err != nil {
		return nil, err
	}

	now := s.now()
	q := &model.Quote{
		Title:          req.Title,
		Content:        req.Content,
		Author:         req.Author,
		Comment:        req.Comment,
		Category:       category,
		IsPinned:       req.IsPinned,
		Confidence:     model.DefaultConfidence,
		LastAccessedAt: now,
		CreatedAt:      now,
	}
	if err := s.primary.Quotes.Create(q); err != nil {
		return nil, apperr.NewBackendUnavailable("addQuote", err)
	}

	s.bus.Publish(ctx, eventbus.QuoteEventCreated, eventbus.QuoteEvent{
		Type:    eventbus.QuoteEventCreated,
		QuoteID: q.ID,
	})
	return q, nil
}

func (s *QuoteService) Update(ctx context.Context, id int64, req UpdateQuoteRequest) (*model.Quote, error) {
	q, err := s.primary.Quotes.Get(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NewNotFound("quote", id)
	}
	if err != nil {
		return nil, apperr.NewBackendUnavailable("updateQuote", err)
	}

	if req.Title != nil {
		q.Title = *req.Title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, apperr.NewInvalidFormat("content is required")
		}
		q.Content = *req.Content
	}
	if req.Author != nil {
		q.Author = *req.Author
	}
	if req.Comment != nil {
		q.Comment = *req.Comment
	}
	if req.Category != nil {
		category := *req.Category
		if category == "" {
			category = model.SentinelCategory
		}
		if err := s.ensureCategory(category); err != nil {
			return nil, err
		}
		q.Category = category
	}
	if req.IsPinned != nil {
		q.IsPinned = *req.IsPinned
	}
	if req.Confidence != nil {
		q.Confidence = model.ClampConfidence(*req.Confidence)
	}

	if err := s.primary.Quotes.Save(q); err != nil {
		return nil, apperr.NewBackendUnavailable("updateQuote", err)
	}
	return q, nil
}

// Delete 幂等：目标不存在也算成功
func (s *QuoteService) Delete(ctx context.Context, id int64) error {
	if err := s.primary.Quotes.Delete(id); err != nil {
		return apperr.NewBackendUnavailable("deleteQuote", err)
	}
	return nil
}

// RenderHTML 把摘抄正文按 Markdown 渲染成 HTML
func (s *QuoteService) RenderHTML(ctx context.Context, id int64) (string, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(q.Content), &buf); err != nil {
		return "", err
	}
	if q.Comment != "" {
		buf.WriteString("<hr/>\n")
		if err := s.markdown.Convert([]byte(q.Comment), &buf); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// ensureCategory 校验分类存在。这是写路径的一环，只查主后端。
func (s *QuoteService) ensureCategory(name string) error {
	if name == model.SentinelCategory {
		return nil
	}
	_, err := s.primary.Categories.GetByName(name)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NewInvalidFormat("category does not exist: " + name)
	}
	if err != nil {
		return apperr.NewBackendUnavailable("resolveCategory", err)
	}
	return nil
}

func (s *QuoteService) publishFallback(ctx context.Context, op string, cause error) {
	s.bus.Publish(ctx, eventbus.QuoteEventReadFallback, eventbus.QuoteEvent{
		Type:   eventbus.QuoteEventReadFallback,
		Op:     op,
		Reason: cause.Error(),
	})
}
