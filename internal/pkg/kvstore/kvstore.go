// Package kvstore 提供本地后端使用的持久化 key/value 存储。
// 数据落在单个 SQLite 文件里，跨进程重启保留。
package kvstore

import (
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// ErrKeyNotFound key 不存在
var ErrKeyNotFound = errors.New("key not found")

type entry struct {
	Key   string `gorm:"primaryKey;size:255"`
	Value string `gorm:"type:text"`
}

func (entry) TableName() string {
	return "kv_entries"
}

// Store 字符串 key/value 存储
type Store struct {
	db *gorm.DB
}

// Open 打开（必要时创建）指定路径的存储文件。路径可用 ":memory:" 做测试。
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, error) {
	var e entry
	err := s.db.First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

func (s *Store) Set(key, value string) error {
	return s.db.Save(&entry{Key: key, Value: value}).Error
}
