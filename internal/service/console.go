package service

import (
	"context"
	"errors"
	"strings"

	"github.com/quotevault/backend/internal/apperr"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// forbiddenKeywords SQL 控制台的提权语句关键词黑名单
var forbiddenKeywords = []string{
	"drop", "alter", "grant", "revoke", "truncate",
	"create user", "set password", "load_file", "into outfile", "shutdown",
}

// ConsoleService 原始 SQL 逃生通道，绕过统一查询层直达远程库。
// 本地模式下不可用。
type ConsoleService struct {
	db *gorm.DB
}

func NewConsoleService(backends *Backends) *ConsoleService {
	return &ConsoleService{db: backends.DB}
}

// Execute 转发一条语句，返回行集。黑名单命中的语句直接拒绝。
func (s *ConsoleService) Execute(ctx context.Context, statement string) ([]map[string]interface{}, error) {
	if s.db == nil {
		return nil, apperr.NewBackendUnavailable("console", errors.New("remote backend not active"))
	}

	normalized := strings.ToLower(statement)
	for _, keyword := range forbiddenKeywords {
		if containsKeyword(normalized, keyword) {
			klog.Errorf("SQL 控制台拦截语句: keyword=%s", keyword)
			return nil, apperr.NewForbiddenStatement(keyword)
		}
	}

	var rows []map[string]interface{}
	if err := s.db.WithContext(ctx).Raw(statement).Scan(&rows).Error; err != nil {
		return nil, apperr.NewBackendUnavailable("console", err)
	}
	return rows, nil
}

// containsKeyword 按词边界匹配，免得 "dropdown" 这类列名被误伤
func containsKeyword(statement, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(statement[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		beforeOK := start == 0 || !isWordChar(statement[start-1])
		afterOK := end == len(statement) || !isWordChar(statement[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
