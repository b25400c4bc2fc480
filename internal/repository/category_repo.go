package repository

import (
	"errors"

	"github.com/quotevault/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create 依赖 name 上的唯一索引挡住重名
func (r *categoryRepository) Create(c *model.Category) error {
	err := r.db.Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *categoryRepository) List() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Order("name ASC, id ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Get(id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) GetByName(name string) (*model.Category, error) {
	var c model.Category
	err := r.db.First(&c, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Upsert(c *model.Category) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(c).Error
}

func (r *categoryRepository) Delete(id int64) error {
	return r.db.Delete(&model.Category{}, id).Error
}
