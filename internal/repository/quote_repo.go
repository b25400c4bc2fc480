package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/quotevault/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// quoteListOrder 置顶优先，其次熟悉度降序、创建时间降序，最后按 id 兜底，
// 保证两个后端产出完全一致的确定性顺序
const quoteListOrder = "is_pinned DESC, confidence DESC, created_at DESC, id DESC"

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(q *model.Quote) error {
	return r.db.Create(q).Error
}

func (r *quoteRepository) List(filter QuoteFilter) ([]model.Quote, error) {
	query := r.db.Model(&model.Quote{})

	if filter.Category != "" && filter.Category != model.CategoryAll {
		query = query.Where("category = ?", filter.Category)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		// LIKE 通配符转义用 '!'，两种方言里行为一致
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!' OR LOWER(author) LIKE ? ESCAPE '!' OR LOWER(comment) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern, pattern,
		)
	}

	var quotes []model.Quote
	err := query.Order(quoteListOrder).Find(&quotes).Error
	return quotes, err
}

func (r *quoteRepository) Get(id int64) (*model.Quote, error) {
	var q model.Quote
	err := r.db.First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quoteRepository) Save(q *model.Quote) error {
	return r.db.Save(q).Error
}

// Upsert 按 id 整行覆盖，id 不存在时按给定 id 插入（导入场景要求保留原 id）
func (r *quoteRepository) Upsert(q *model.Quote) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(q).Error
}

func (r *quoteRepository) Delete(id int64) error {
	// 删除不存在的 id 不算错误
	return r.db.Delete(&model.Quote{}, id).Error
}

func (r *quoteRepository) ReassignCategory(from, to string) (int64, error) {
	res := r.db.Model(&model.Quote{}).
		Where("category = ?", from).
		Update("category", to)
	return res.RowsAffected, res.Error
}

// DecayBefore 对 last_accessed_at 早于 cutoff 的摘抄做一次衰减，
// 单次调用每条最多扣减一档，下限 0。CASE WHEN 在 MySQL 与 SQLite 下均可用。
// 已经到 0 的行不在命中范围内：它们没有可衰减的空间，且 MySQL 的
// RowsAffected 默认只数值有变化的行，排除后两个后端的 affected 口径一致。
func (r *quoteRepository) DecayBefore(cutoff time.Time, step float64) (int64, error) {
	res := r.db.Model(&model.Quote{}).
		Where("last_accessed_at < ? AND confidence > 0", cutoff).
		Update("confidence", gorm.Expr(
			"CASE WHEN confidence - ? < 0 THEN 0 ELSE confidence - ? END", step, step))
	return res.RowsAffected, res.Error
}

// escapeLike 转义 LIKE 模式里的通配符，配合 ESCAPE '!' 使用
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
