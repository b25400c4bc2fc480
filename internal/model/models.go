package model

import (
	"time"
)

// SentinelCategory 默认分类，始终存在且不可删除
const SentinelCategory = "未分类"

// CategoryAll 列表查询时表示“不限分类”的标记
const CategoryAll = "all"

// DefaultConfidence 新摘抄的初始熟悉度
const DefaultConfidence = 0.7

type Quote struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title    string `json:"title" gorm:"size:255"`
	Content  string `json:"content" gorm:"type:text;not null"`
	Author   string `json:"author" gorm:"size:255"`
	Comment  string `json:"comment" gorm:"type:text"`
	Category string `json:"category" gorm:"size:255;not null;index"` // 按名称引用 Category.Name
	IsPinned bool   `json:"is_pinned" gorm:"default:false"`
	// [0,1] 知识熟悉度。初始值由服务层显式赋 0.7，列上不挂 default，
	// 否则 gorm 会在插入时丢弃合法的零值
	Confidence     float64   `json:"confidence"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:255;not null;uniqueIndex"`
}

// ConfidenceBand 熟悉度分档，仅用于展示，不落库
type ConfidenceBand string

const (
	BandDormant   ConfidenceBand = "dormant"
	BandFading    ConfidenceBand = "fading"
	BandWaning    ConfidenceBand = "waning"
	BandSprouting ConfidenceBand = "sprouting"
	BandThriving  ConfidenceBand = "thriving"
)

// Band 由 confidence 推导当前分档
func (q *Quote) Band() ConfidenceBand {
	switch {
	case q.Confidence <= 0:
		return BandDormant
	case q.Confidence < 0.3:
		return BandFading
	case q.Confidence < 0.7:
		return BandWaning
	case q.Confidence < 0.8:
		return BandSprouting
	default:
		return BandThriving
	}
}

// ClampConfidence 把任意输入收敛到 [0,1]
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
