package service

import (
	"path/filepath"

	driver "github.com/go-sql-driver/mysql"
	"github.com/quotevault/backend/config"
	"github.com/quotevault/backend/internal/pkg/database"
	"github.com/quotevault/backend/internal/pkg/kvstore"
	"github.com/quotevault/backend/internal/repository"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// Backend 一套可用的存储实现
type Backend struct {
	Quotes     repository.QuoteRepository
	Categories repository.CategoryRepository
	Remote     bool
}

// Backends 启动时选好的主后端与只读回退。
// Fallback 仅在远程主用时存在；DB 是远程连接，供 SQL 控制台使用。
type Backends struct {
	Primary  *Backend
	Fallback *Backend
	DB       *gorm.DB
}

// RemoteActive 能力标记，只反映配置是否成功，不代表当下连通
func (b *Backends) RemoteActive() bool {
	return b.Primary.Remote
}

// SelectBackends 在构造期决定主后端。只校验配置形状（DSN 可解析、
// 客户端能构造），不做网络探活；配置缺失或畸形时确定性地退回本地，
// 这不是错误。
func SelectBackends(cfg *config.Config) (*Backends, error) {
	local, err := newLocalBackend(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Type != "mysql" {
		klog.V(6).Infof("未配置远程库，使用本地后端")
		return &Backends{Primary: local}, nil
	}

	if _, err := driver.ParseDSN(cfg.Database.DSN); err != nil {
		klog.Errorf("远程库 DSN 无法解析，退回本地后端: %v", err)
		return &Backends{Primary: local}, nil
	}

	db, err := database.InitDB("mysql", cfg.Database.DSN)
	if err != nil {
		klog.Errorf("远程库客户端构造失败，退回本地后端: %v", err)
		return &Backends{Primary: local}, nil
	}

	// 建表和默认分类的播种延迟到首次读写，启动时库不可达不影响构造
	prep := database.NewPreparer(db)
	remote := &Backend{
		Quotes:     repository.NewPreparedQuoteRepository(prep.Ready, repository.NewQuoteRepository(db)),
		Categories: repository.NewPreparedCategoryRepository(prep.Ready, repository.NewCategoryRepository(db)),
		Remote:     true,
	}
	return &Backends{Primary: remote, Fallback: local, DB: db}, nil
}

func newLocalBackend(cfg *config.Config) (*Backend, error) {
	kv, err := kvstore.Open(filepath.Join(cfg.Data.Dir, "local.db"))
	if err != nil {
		return nil, err
	}
	categories, err := repository.NewLocalCategoryRepository(kv)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Quotes:     repository.NewLocalQuoteRepository(kv),
		Categories: categories,
	}, nil
}
