package service

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/quotevault/backend/config"
	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/pkg/kvstore"
	"github.com/quotevault/backend/internal/repository"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Lifecycle: config.LifecycleConfig{
			BoostStep:  0.1,
			DecayStep:  0.05,
			DecayAfter: 7 * 24 * time.Hour,
		},
	}
}

func testLocalBackend(t *testing.T) *Backend {
	t.Helper()
	kv, err := kvstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open kvstore error: %v", err)
	}
	categories, err := repository.NewLocalCategoryRepository(kv)
	if err != nil {
		t.Fatalf("local category repo error: %v", err)
	}
	return &Backend{
		Quotes:     repository.NewLocalQuoteRepository(kv),
		Categories: categories,
	}
}

func testLocalBackends(t *testing.T) *Backends {
	t.Helper()
	return &Backends{Primary: testLocalBackend(t)}
}

// testRemoteBackends 用内存 SQLite 扮演关系型主后端，外加本地回退
func testRemoteBackends(t *testing.T) *Backends {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := db.AutoMigrate(&model.Quote{}, &model.Category{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	if err := db.Create(&model.Category{Name: model.SentinelCategory}).Error; err != nil {
		t.Fatalf("seed sentinel error: %v", err)
	}
	return &Backends{
		Primary: &Backend{
			Quotes:     repository.NewQuoteRepository(db),
			Categories: repository.NewCategoryRepository(db),
			Remote:     true,
		},
		Fallback: testLocalBackend(t),
		DB:       db,
	}
}

var errBackendDown = errors.New("dial tcp 10.0.0.1:3306: connect: connection refused")

// failingQuoteRepo 模拟远程库全面不可用
type failingQuoteRepo struct{}

func (failingQuoteRepo) Create(q *model.Quote) error { return errBackendDown }
func (failingQuoteRepo) List(filter repository.QuoteFilter) ([]model.Quote, error) {
	return nil, errBackendDown
}
func (failingQuoteRepo) Get(id int64) (*model.Quote, error) { return nil, errBackendDown }
func (failingQuoteRepo) Save(q *model.Quote) error          { return errBackendDown }
func (failingQuoteRepo) Upsert(q *model.Quote) error        { return errBackendDown }
func (failingQuoteRepo) Delete(id int64) error              { return errBackendDown }
func (failingQuoteRepo) ReassignCategory(from, to string) (int64, error) {
	return 0, errBackendDown
}
func (failingQuoteRepo) DecayBefore(cutoff time.Time, step float64) (int64, error) {
	return 0, errBackendDown
}

type failingCategoryRepo struct{}

func (failingCategoryRepo) Create(c *model.Category) error { return errBackendDown }
func (failingCategoryRepo) List() ([]model.Category, error) {
	return nil, errBackendDown
}
func (failingCategoryRepo) Get(id int64) (*model.Category, error) { return nil, errBackendDown }
func (failingCategoryRepo) GetByName(name string) (*model.Category, error) {
	return nil, errBackendDown
}
func (failingCategoryRepo) Upsert(c *model.Category) error { return errBackendDown }
func (failingCategoryRepo) Delete(id int64) error          { return errBackendDown }

// testBrokenRemoteBackends 远程主后端读写全部失败，本地回退可用
func testBrokenRemoteBackends(t *testing.T) *Backends {
	t.Helper()
	return &Backends{
		Primary: &Backend{
			Quotes:     failingQuoteRepo{},
			Categories: failingCategoryRepo{},
			Remote:     true,
		},
		Fallback: testLocalBackend(t),
	}
}
