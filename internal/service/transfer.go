package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/eventbus"
	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/repository"
)

// snapshotVersion 快照格式版本
const snapshotVersion = 1

// Snapshot 全量快照
type Snapshot struct {
	Version    int              `json:"version"`
	SnapshotID string           `json:"snapshot_id"`
	ExportedAt time.Time        `json:"exported_at"`
	Quotes     []SnapshotQuote  `json:"quotes"`
	Categories []model.Category `json:"categories"`
}

// SnapshotQuote 快照里的摘抄。confidence/last_accessed_at 允许缺省，
// 以兼容不带生命周期字段的旧导出。
type SnapshotQuote struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Author         string     `json:"author"`
	Comment        string     `json:"comment"`
	Category       string     `json:"category"`
	IsPinned       bool       `json:"is_pinned"`
	Confidence     *float64   `json:"confidence,omitempty"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TransferService 全量导出与按 id 幂等导入。
// 导入是增量合并：快照里没有的记录保持不动，绝不清表。
type TransferService struct {
	primary    *Backend
	quoteSvc   *QuoteService
	categories *CategoryService
	bus        *eventbus.QuoteEventBus
	now        func() time.Time
}

func NewTransferService(backends *Backends, quoteSvc *QuoteService, categorySvc *CategoryService, bus *eventbus.QuoteEventBus) *TransferService {
	return &TransferService{
		primary:    backends.Primary,
		quoteSvc:   quoteSvc,
		categories: categorySvc,
		bus:        bus,
		now:        time.Now,
	}
}

// Export 经由统一查询层做两次无过滤读取（读回退照常生效），外加元数据
func (s *TransferService) Export(ctx context.Context) ([]byte, error) {
	quotes, err := s.quoteSvc.List(ctx, "", "")
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot{
		Version:    snapshotVersion,
		SnapshotID: uuid.New().String(),
		ExportedAt: s.now(),
		Quotes:     make([]SnapshotQuote, 0, len(quotes)),
		Categories: categories,
	}
	for _, q := range quotes {
		confidence := q.Confidence
		lastAccessed := q.LastAccessedAt
		snapshot.Quotes = append(snapshot.Quotes, SnapshotQuote{
			ID:             q.ID,
			Title:          q.Title,
			Content:        q.Content,
			Author:         q.Author,
			Comment:        q.Comment,
			Category:       q.Category,
			IsPinned:       q.IsPinned,
			Confidence:     &confidence,
			LastAccessedAt: &lastAccessed,
			CreatedAt:      q.CreatedAt,
		})
	}
	return json.Marshal(snapshot)
}

// snapshotIn 用指针区分“键缺失”和“空数组”
type snapshotIn struct {
	Version    int               `json:"version"`
	Quotes     *[]SnapshotQuote  `json:"quotes"`
	Categories *[]model.Category `json:"categories"`
}

// Import 按 id upsert：已存在的整行覆盖，新 id 原样保留以支持忠实往返。
// 缺省的 confidence 取 0.7，缺省的 last_accessed_at 取该记录自己的 created_at。
func (s *TransferService) Import(ctx context.Context, data []byte) (int64, error) {
	var in snapshotIn
	if err := json.Unmarshal(data, &in); err != nil {
		return 0, apperr.NewInvalidFormat("snapshot is not valid JSON: " + err.Error())
	}
	if in.Quotes == nil || in.Categories == nil {
		return 0, apperr.NewInvalidFormat("snapshot must contain quotes and categories")
	}

	for _, c := range *in.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return 0, apperr.NewInvalidFormat("snapshot contains a category without a name")
		}
	}
	for _, q := range *in.Quotes {
		if q.ID == 0 || strings.TrimSpace(q.Content) == "" {
			return 0, apperr.NewInvalidFormat("snapshot contains a quote without id or content")
		}
	}

	var affected int64
	for i := range *in.Categories {
		c := (*in.Categories)[i]
		applied, err := s.importCategory(&c)
		if err != nil {
			return affected, err
		}
		if applied {
			affected++
		}
	}
	for _, sq := range *in.Quotes {
		q := model.Quote{
			ID:        sq.ID,
			Title:     sq.Title,
			Content:   sq.Content,
			Author:    sq.Author,
			Comment:   sq.Comment,
			Category:  sq.Category,
			IsPinned:  sq.IsPinned,
			CreatedAt: sq.CreatedAt,
		}
		if q.Category == "" {
			q.Category = model.SentinelCategory
		}
		if sq.Confidence != nil {
			q.Confidence = model.ClampConfidence(*sq.Confidence)
		} else {
			q.Confidence = model.DefaultConfidence
		}
		if sq.LastAccessedAt != nil {
			q.LastAccessedAt = *sq.LastAccessedAt
		} else {
			q.LastAccessedAt = sq.CreatedAt
		}
		if err := s.primary.Quotes.Upsert(&q); err != nil {
			return affected, apperr.NewBackendUnavailable("importSnapshot", err)
		}
		affected++
	}

	s.bus.Publish(ctx, eventbus.QuoteEventImported, eventbus.QuoteEvent{
		Type:     eventbus.QuoteEventImported,
		Affected: affected,
	})
	return affected, nil
}

// importCategory 分类按名称合并：摘抄按名称引用分类，名称才是真正的键。
// 默认分类始终存在，不接受快照覆盖；同名分类已存在时不动既有行；
// 快照 id 被别的分类占着时放弃该 id，换新 id 插入。
func (s *TransferService) importCategory(c *model.Category) (bool, error) {
	if c.Name == model.SentinelCategory {
		return false, nil
	}

	_, err := s.primary.Categories.GetByName(c.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, apperr.NewBackendUnavailable("importSnapshot", err)
	}

	if c.ID != 0 {
		existing, err := s.primary.Categories.Get(c.ID)
		if err == nil && existing.Name != c.Name {
			c.ID = 0
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, apperr.NewBackendUnavailable("importSnapshot", err)
		}
	}

	if c.ID == 0 {
		if err := s.primary.Categories.Create(c); err != nil {
			return false, apperr.NewBackendUnavailable("importSnapshot", err)
		}
		return true, nil
	}
	if err := s.primary.Categories.Upsert(c); err != nil {
		return false, apperr.NewBackendUnavailable("importSnapshot", err)
	}
	return true, nil
}
