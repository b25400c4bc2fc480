package repository

import (
	"errors"
	"time"

	"github.com/quotevault/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// ErrDuplicate 名称已存在错误
var ErrDuplicate = errors.New("record already exists")

// QuoteFilter 列表查询条件。两个条件按 AND 组合。
type QuoteFilter struct {
	Category string // 空串或 model.CategoryAll 表示不限分类
	Search   string // 去除首尾空白后非空时，对标题/内容/作者/批注做大小写不敏感子串匹配
}

// QuoteRepository 摘抄数据访问契约，远程关系库与本地存储各有一套实现，
// 过滤与排序语义必须一致。
type QuoteRepository interface {
	Create(q *model.Quote) error
	List(filter QuoteFilter) ([]model.Quote, error)
	Get(id int64) (*model.Quote, error)
	Save(q *model.Quote) error
	Upsert(q *model.Quote) error
	Delete(id int64) error
	ReassignCategory(from, to string) (int64, error)
	DecayBefore(cutoff time.Time, step float64) (int64, error)
}

type CategoryRepository interface {
	Create(c *model.Category) error
	List() ([]model.Category, error)
	Get(id int64) (*model.Category, error)
	GetByName(name string) (*model.Category, error)
	Upsert(c *model.Category) error
	Delete(id int64) error
}
