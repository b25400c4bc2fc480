package database

import (
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/quotevault/backend/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitDB 构造关系型后端的客户端。只做配置形状校验，
// 不做任何网络往返；建表与播种放在 Preparer 里延迟到首次访问。
func InitDB(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN: dsn,
			// 跳过启动时的版本探测，避免构造期的网络往返
			SkipInitializeWithVersion: true,
		})
	default:
		// 使用 github.com/glebarez/sqlite 驱动
		dialector = sqlite.Open(dsn)
	}

	return gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		// 把方言各异的唯一键冲突统一成 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
}

// Migrate 建表并保证默认分类存在，幂等
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Quote{}, &model.Category{}); err != nil {
		return err
	}
	return EnsureSentinel(db)
}

// EnsureSentinel 保证默认分类存在
func EnsureSentinel(db *gorm.DB) error {
	return db.Where(model.Category{Name: model.SentinelCategory}).
		FirstOrCreate(&model.Category{Name: model.SentinelCategory}).Error
}

// Preparer 把建表和默认分类的播种推迟到首次真正读写。
// 库在启动时不可达也不碍事：这次访问报错，下次访问重试，
// 迁移一旦成功便不再重复执行。
type Preparer struct {
	db    *gorm.DB
	mu    sync.Mutex
	ready bool
}

func NewPreparer(db *gorm.DB) *Preparer {
	return &Preparer{db: db}
}

// Ready 确保迁移已完成，未完成时就地执行一次
func (p *Preparer) Ready() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := Migrate(p.db); err != nil {
		return err
	}
	p.ready = true
	return nil
}
