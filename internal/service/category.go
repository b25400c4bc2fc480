package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quotevault/backend/config"
	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/eventbus"
	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/repository"
	"k8s.io/klog/v2"
)

type CategoryService struct {
	cfg      *config.Config
	primary  *Backend
	fallback *Backend
	bus      *eventbus.QuoteEventBus
}

func NewCategoryService(cfg *config.Config, backends *Backends, bus *eventbus.QuoteEventBus) *CategoryService {
	return &CategoryService{
		cfg:      cfg,
		primary:  backends.Primary,
		fallback: backends.Fallback,
		bus:      bus,
	}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.primary.Categories.List()
	if err != nil && s.fallback != nil {
		s.bus.Publish(ctx, eventbus.QuoteEventReadFallback, eventbus.QuoteEvent{
			Type:   eventbus.QuoteEventReadFallback,
			Op:     "listCategories",
			Reason: err.Error(),
		})
		categories, err = s.fallback.Categories.List()
		if err != nil {
			return nil, apperr.NewBackendUnavailable("listCategories", err)
		}
		return categories, nil
	}
	if err != nil {
		return nil, apperr.NewBackendUnavailable("listCategories", err)
	}
	return categories, nil
}

func (s *CategoryService) Add(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.NewInvalidFormat("category name is required")
	}

	c := &model.Category{Name: name}
	err := s.primary.Categories.Create(c)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.NewConflict("category already exists: " + name)
	}
	if err != nil {
		return nil, apperr.NewBackendUnavailable("addCategory", err)
	}
	return c, nil
}

// Delete 先把引用该分类的摘抄改挂到默认分类，再删分类本身。
// 两步不构成事务：改挂可以安全重复，删行失败时直接上报，
// 不会留下指向已删分类的摘抄。
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	c, err := s.primary.Categories.Get(id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NewNotFound("category", id)
	}
	if err != nil {
		return apperr.NewBackendUnavailable("deleteCategory", err)
	}

	// 按名称兜底防护：默认分类不可删
	if c.Name == model.SentinelCategory {
		return apperr.NewConflict("the default category cannot be deleted")
	}

	affected, err := s.primary.Quotes.ReassignCategory(c.Name, model.SentinelCategory)
	if err != nil {
		return apperr.NewBackendUnavailable("deleteCategory", fmt.Errorf("reassign quotes: %w", err))
	}
	if affected > 0 {
		klog.V(6).Infof("分类删除前改挂摘抄: category=%s, affected=%d", c.Name, affected)
	}

	if err := s.primary.Categories.Delete(id); err != nil {
		// 改挂已完成但分类行还在，属于可重试的安全中间态，必须上报
		return apperr.NewBackendUnavailable("deleteCategory", fmt.Errorf("quotes reassigned but category row remains: %w", err))
	}
	return nil
}
