package service

import (
	"context"
	"errors"
	"time"

	"github.com/quotevault/backend/config"
	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/eventbus"
	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/repository"
)

// LifecycleService 知识熟悉度的提升与衰减。
// 熟悉度始终被夹在 [0,1]，分档只是派生视图，这里只动标量本身。
type LifecycleService struct {
	cfg     *config.Config
	primary *Backend
	bus     *eventbus.QuoteEventBus
	now     func() time.Time
}

func NewLifecycleService(cfg *config.Config, backends *Backends, bus *eventbus.QuoteEventBus) *LifecycleService {
	return &LifecycleService{
		cfg:     cfg,
		primary: backends.Primary,
		bus:     bus,
		now:     time.Now,
	}
}

// Boost 用户重读一条摘抄：熟悉度 +step 封顶 1.0，刷新访问时间
func (s *LifecycleService) Boost(ctx context.Context, id int64) (*model.Quote, error) {
	q, err := s.primary.Quotes.Get(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NewNotFound("quote", id)
	}
	if err != nil {
		return nil, apperr.NewBackendUnavailable("boost", err)
	}

	q.Confidence = model.ClampConfidence(q.Confidence + s.cfg.Lifecycle.BoostStep)
	q.LastAccessedAt = s.now()
	if err := s.primary.Quotes.Save(q); err != nil {
		return nil, apperr.NewBackendUnavailable("boost", err)
	}

	s.bus.Publish(ctx, eventbus.QuoteEventBoosted, eventbus.QuoteEvent{
		Type:    eventbus.QuoteEventBoosted,
		QuoteID: q.ID,
	})
	return q, nil
}

// DecaySweep 对超过 DecayAfter 未访问的摘抄做一轮衰减。
// 单次调用每条最多扣一档，与积压了多少周无关；重复调用安全。
func (s *LifecycleService) DecaySweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.Lifecycle.DecayAfter)
	affected, err := s.primary.Quotes.DecayBefore(cutoff, s.cfg.Lifecycle.DecayStep)
	if err != nil {
		return 0, apperr.NewBackendUnavailable("decaySweep", err)
	}

	s.bus.Publish(ctx, eventbus.QuoteEventDecaySwept, eventbus.QuoteEvent{
		Type:     eventbus.QuoteEventDecaySwept,
		Affected: affected,
	})
	return affected, nil
}
