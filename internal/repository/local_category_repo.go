package repository

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/pkg/kvstore"
)

// categoriesKey 本地存储里分类集合的固定 key
const categoriesKey = "categories"

type localCategoryRepository struct {
	mu sync.Mutex
	kv *kvstore.Store
}

// NewLocalCategoryRepository 构造本地分类存储，并保证默认分类存在
func NewLocalCategoryRepository(kv *kvstore.Store) (CategoryRepository, error) {
	r := &localCategoryRepository{kv: kv}

	categories, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c.Name == model.SentinelCategory {
			return r, nil
		}
	}
	categories = append(categories, model.Category{ID: 1, Name: model.SentinelCategory})
	if err := r.store(categories); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *localCategoryRepository) load() ([]model.Category, error) {
	raw, err := r.kv.Get(categoriesKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return []model.Category{}, nil
	}
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *localCategoryRepository) store(categories []model.Category) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return r.kv.Set(categoriesKey, string(raw))
}

// Create 本地实现靠显式查重保证名称唯一
func (r *localCategoryRepository) Create(c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories, err := r.load()
	if err != nil {
		return err
	}
	for i := range categories {
		if categories[i].Name == c.Name {
			return ErrDuplicate
		}
	}
	if c.ID == 0 {
		c.ID = time.Now().UnixNano()
	}
	for categoryIndexOf(categories, c.ID) >= 0 {
		c.ID++
	}
	categories = append(categories, *c)
	return r.store(categories)
}

func (r *localCategoryRepository) List() ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (r *localCategoryRepository) Get(id int64) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories, err := r.load()
	if err != nil {
		return nil, err
	}
	i := categoryIndexOf(categories, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	c := categories[i]
	return &c, nil
}

func (r *localCategoryRepository) GetByName(name string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].Name == name {
			c := categories[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *localCategoryRepository) Upsert(c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories, err := r.load()
	if err != nil {
		return err
	}
	if i := categoryIndexOf(categories, c.ID); i >= 0 {
		categories[i] = *c
	} else {
		categories = append(categories, *c)
	}
	return r.store(categories)
}

func (r *localCategoryRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories, err := r.load()
	if err != nil {
		return err
	}
	i := categoryIndexOf(categories, id)
	if i < 0 {
		return nil
	}
	categories = append(categories[:i], categories[i+1:]...)
	return r.store(categories)
}

func categoryIndexOf(categories []model.Category, id int64) int {
	for i := range categories {
		if categories[i].ID == id {
			return i
		}
	}
	return -1
}
