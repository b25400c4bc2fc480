package repository

import (
	"time"

	"github.com/quotevault/backend/internal/model"
)

// preparedQuoteRepository 每次访问前先跑 prepare（远程库的延迟迁移），
// prepare 失败时本次访问报错，不碰内层实现
type preparedQuoteRepository struct {
	prepare func() error
	inner   QuoteRepository
}

func NewPreparedQuoteRepository(prepare func() error, inner QuoteRepository) QuoteRepository {
	return &preparedQuoteRepository{prepare: prepare, inner: inner}
}

func (r *preparedQuoteRepository) Create(q *model.Quote) error {
	if err := r.prepare(); err != nil {
		return err
	}
	return r.inner.Create(q)
}

func (r *preparedQuoteRepository) List(filter QuoteFilter) ([]model.Quote, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}
	return r.inner.List(filter)
}

func (r *preparedQuoteRepository) Get(id int64) (*model.Quote, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}
	return r.inner.Get(id)
}

func (r *preparedQuoteRepository) Save(q *model.Quote) error {
	if err := r.prepare(); err != nil {
		return err
	}
	return r.inner.Save(q)
}

func (r *preparedQuoteRepository) Upsert(q *model.Quote) error {
	if err := r.prepare(); err != nil {
		return err
	}
	return r.inner.Upsert(q)
}

func (r *preparedQuoteRepository) Delete(id int64) error {
	if err := r.prepare(); err != nil {
		return err
	}
	return r.inner.Delete(id)
}

func (r *preparedQuoteRepository) ReassignCategory(from, to string) (int64, error) {
	if err := r.prepare(); err != nil {
		return 0, err
	}
	return r.inner.ReassignCategory(from, to)
}

func (r *preparedQuoteRepository) DecayBefore(cutoff time.Time, step float64) (int64, error) {
	if err := r.prepare(); err != nil {
		return 0, err
	}
	return r.inner.DecayBefore(cutoff, step)
}

type preparedCategoryRepository struct {
	prepare func() error
	inner   CategoryRepository
}

func NewPreparedCategoryRepository(prepare func() error, inner CategoryRepository) CategoryRepository {
	return &preparedCategoryRepository{prepare: prepare, inner: inner}
}

func (r *preparedCategoryRepository) Create(c *model.Category) error {
	if err := r.prepare(); err != nil {
		return err
	}
	return r.inner.Create(c)
}

func (r *preparedCategoryRepository) List() ([]model.Category, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}
	return r.inner.List()
}

func (r *preparedCategoryRepository) Get(id int64) (*model.Category, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}
	return r.inner.Get(id)
}

func (r *preparedCategoryRepository) GetByName(name string) (*model.Category, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}
	return r.inner.GetByName(name)
}

func (r *preparedCategoryRepository) Upsert(c *model.Category) error {
	if err := r.prepare(); err != nil {
		return err
	}
	return r.inner.Upsert(c)
}

func (r *preparedCategoryRepository) Delete(id int64) error {
	if err := r.prepare(); err != nil {
		return err
	}
	return r.inner.Delete(id)
}
