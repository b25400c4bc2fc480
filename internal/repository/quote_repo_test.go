package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/quotevault/backend/internal/model"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := db.AutoMigrate(&model.Quote{}, &model.Category{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func TestQuoteRepositoryListOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuoteRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []model.Quote{
		{Content: "旧的普通摘抄", Category: model.SentinelCategory, Confidence: 0.7, CreatedAt: base},
		{Content: "新的普通摘抄", Category: model.SentinelCategory, Confidence: 0.7, CreatedAt: base.Add(time.Hour)},
		{Content: "低熟悉度", Category: model.SentinelCategory, Confidence: 0.2, CreatedAt: base.Add(2 * time.Hour)},
		{Content: "置顶的摘抄", Category: model.SentinelCategory, Confidence: 0.1, IsPinned: true, CreatedAt: base},
	}
	for i := range seed {
		if err := repo.Create(&seed[i]); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	quotes, err := repo.List(QuoteFilter{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(quotes) != 4 {
		t.Fatalf("expected 4 quotes, got %d", len(quotes))
	}
	if !quotes[0].IsPinned {
		t.Fatalf("expected pinned quote first, got %q", quotes[0].Content)
	}
	if quotes[1].Content != "新的普通摘抄" || quotes[2].Content != "旧的普通摘抄" {
		t.Fatalf("unexpected confidence/created_at order: %q, %q", quotes[1].Content, quotes[2].Content)
	}
	if quotes[3].Content != "低熟悉度" {
		t.Fatalf("expected lowest confidence last, got %q", quotes[3].Content)
	}
}

func TestQuoteRepositoryListFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuoteRepository(db)

	now := time.Now()
	seed := []model.Quote{
		{Content: "The Quiet Mind", Category: "读书", Confidence: 0.7, CreatedAt: now},
		{Content: "行到水穷处", Author: "王维", Category: "诗词", Confidence: 0.7, CreatedAt: now},
		{Title: "Quiet", Content: "坐看云起时", Category: "诗词", Confidence: 0.7, CreatedAt: now},
	}
	for i := range seed {
		if err := repo.Create(&seed[i]); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	// 搜索大小写不敏感、匹配子串
	quotes, err := repo.List(QuoteFilter{Search: "quiet"})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 matches for quiet, got %d", len(quotes))
	}

	// 分类与搜索按 AND 组合
	quotes, err = repo.List(QuoteFilter{Category: "诗词", Search: "QUIET"})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Content != "坐看云起时" {
		t.Fatalf("expected single composed match, got %+v", quotes)
	}

	// "all" 标记等同于不限分类
	quotes, err = repo.List(QuoteFilter{Category: model.CategoryAll})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(quotes) != 3 {
		t.Fatalf("expected all quotes, got %d", len(quotes))
	}

	// LIKE 通配符按字面匹配
	quotes, err = repo.List(QuoteFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected literal wildcard to match nothing, got %d", len(quotes))
	}
}

func TestQuoteRepositoryDeleteIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuoteRepository(db)

	q := model.Quote{Content: "删我", Category: model.SentinelCategory, Confidence: 0.7, CreatedAt: time.Now()}
	if err := repo.Create(&q); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := repo.Delete(q.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if err := repo.Delete(q.ID); err != nil {
		t.Fatalf("second delete should succeed, got %v", err)
	}
	if err := repo.Delete(99999); err != nil {
		t.Fatalf("deleting unknown id should succeed, got %v", err)
	}
}

func TestQuoteRepositoryDecayBefore(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuoteRepository(db)

	now := time.Now()
	stale := model.Quote{Content: "十天没碰", Category: model.SentinelCategory, Confidence: 0.5,
		LastAccessedAt: now.Add(-10 * 24 * time.Hour), CreatedAt: now.Add(-10 * 24 * time.Hour)}
	fresh := model.Quote{Content: "昨天看过", Category: model.SentinelCategory, Confidence: 0.5,
		LastAccessedAt: now.Add(-24 * time.Hour), CreatedAt: now}
	floor := model.Quote{Content: "已经到底", Category: model.SentinelCategory, Confidence: 0.03,
		LastAccessedAt: now.Add(-30 * 24 * time.Hour), CreatedAt: now}
	drained := model.Quote{Content: "早就归零", Category: model.SentinelCategory, Confidence: 0,
		LastAccessedAt: now.Add(-60 * 24 * time.Hour), CreatedAt: now}
	for _, q := range []*model.Quote{&stale, &fresh, &floor, &drained} {
		if err := repo.Create(q); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	cutoff := now.Add(-7 * 24 * time.Hour)
	affected, err := repo.DecayBefore(cutoff, 0.05)
	if err != nil {
		t.Fatalf("decay error: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 affected, got %d", affected)
	}

	got, err := repo.Get(stale.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Confidence < 0.449 || got.Confidence > 0.451 {
		t.Fatalf("expected 0.45, got %v", got.Confidence)
	}

	got, err = repo.Get(fresh.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("fresh quote should be untouched, got %v", got.Confidence)
	}

	got, err = repo.Get(floor.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected clamp at 0, got %v", got.Confidence)
	}

	// 已经归零的行没有可衰减的空间，不计入 affected
	got, err = repo.Get(drained.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Confidence != 0 {
		t.Fatalf("drained quote should stay at 0, got %v", got.Confidence)
	}

	// 再扫一遍：floor 上一轮已归零被排除，只有 stale 还能再扣
	affected, err = repo.DecayBefore(cutoff, 0.05)
	if err != nil {
		t.Fatalf("second decay error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected on second sweep, got %d", affected)
	}
}

func TestQuoteRepositoryUpsertKeepsID(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuoteRepository(db)

	q := model.Quote{ID: 42, Content: "导入的摘抄", Category: model.SentinelCategory, Confidence: 0.7, CreatedAt: time.Now()}
	if err := repo.Upsert(&q); err != nil {
		t.Fatalf("upsert insert error: %v", err)
	}

	q.Content = "覆盖后的内容"
	if err := repo.Upsert(&q); err != nil {
		t.Fatalf("upsert update error: %v", err)
	}

	got, err := repo.Get(42)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Content != "覆盖后的内容" {
		t.Fatalf("unexpected content: %q", got.Content)
	}

	quotes, err := repo.List(QuoteFilter{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("upsert should not duplicate, got %d rows", len(quotes))
	}
}

func TestQuoteRepositoryUpsertKeepsZeroConfidence(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuoteRepository(db)

	// 熟悉度 0 是衰减引擎自己会产出的合法值，导入时必须原样落库
	q := model.Quote{ID: 900, Content: "彻底遗忘的摘抄", Category: model.SentinelCategory,
		Confidence: 0, LastAccessedAt: time.Now(), CreatedAt: time.Now()}
	if err := repo.Upsert(&q); err != nil {
		t.Fatalf("upsert error: %v", err)
	}

	got, err := repo.Get(900)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected confidence 0, got %v", got.Confidence)
	}
}

func TestCategoryRepositoryDuplicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewCategoryRepository(db)

	if err := repo.Create(&model.Category{Name: "随笔"}); err != nil {
		t.Fatalf("create error: %v", err)
	}
	err := repo.Create(&model.Category{Name: "随笔"})
	if err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
