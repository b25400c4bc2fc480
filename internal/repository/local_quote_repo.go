package repository

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quotevault/backend/internal/model"
	"github.com/quotevault/backend/internal/pkg/kvstore"
)

// quotesKey 本地存储里摘抄集合的固定 key
const quotesKey = "quotes"

// localQuoteRepository 本地后端实现：整个集合以 JSON 文本存在 kvstore 里，
// 过滤与排序在内存中完成，语义与 SQL 实现保持一致。
type localQuoteRepository struct {
	mu sync.Mutex
	kv *kvstore.Store
}

func NewLocalQuoteRepository(kv *kvstore.Store) QuoteRepository {
	return &localQuoteRepository{kv: kv}
}

func (r *localQuoteRepository) load() ([]model.Quote, error) {
	raw, err := r.kv.Get(quotesKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return []model.Quote{}, nil
	}
	if err != nil {
		return nil, err
	}
	var quotes []model.Quote
	if err := json.Unmarshal([]byte(raw), &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *localQuoteRepository) store(quotes []model.Quote) error {
	raw, err := json.Marshal(quotes)
	if err != nil {
		return err
	}
	return r.kv.Set(quotesKey, string(raw))
}

// Create 本地 id 用高精度时间戳，冲突时递增避让
func (r *localQuoteRepository) Create(q *model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return err
	}

	if q.ID == 0 {
		q.ID = time.Now().UnixNano()
	}
	for indexOf(quotes, q.ID) >= 0 {
		q.ID++
	}

	quotes = append(quotes, *q)
	return r.store(quotes)
}

func (r *localQuoteRepository) List(filter QuoteFilter) ([]model.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return nil, err
	}

	result := make([]model.Quote, 0, len(quotes))
	for _, q := range quotes {
		if matchesFilter(&q, filter) {
			result = append(result, q)
		}
	}
	sortQuotes(result)
	return result, nil
}

func (r *localQuoteRepository) Get(id int64) (*model.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(quotes, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	q := quotes[i]
	return &q, nil
}

func (r *localQuoteRepository) Save(q *model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(quotes, q.ID)
	if i < 0 {
		return ErrNotFound
	}
	quotes[i] = *q
	return r.store(quotes)
}

func (r *localQuoteRepository) Upsert(q *model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return err
	}
	if i := indexOf(quotes, q.ID); i >= 0 {
		quotes[i] = *q
	} else {
		quotes = append(quotes, *q)
	}
	return r.store(quotes)
}

func (r *localQuoteRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(quotes, id)
	if i < 0 {
		// 删除不存在的 id 不算错误
		return nil
	}
	quotes = append(quotes[:i], quotes[i+1:]...)
	return r.store(quotes)
}

func (r *localQuoteRepository) ReassignCategory(from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return 0, err
	}
	var affected int64
	for i := range quotes {
		if quotes[i].Category == from {
			quotes[i].Category = to
			affected++
		}
	}
	if affected == 0 {
		return 0, nil
	}
	return affected, r.store(quotes)
}

func (r *localQuoteRepository) DecayBefore(cutoff time.Time, step float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotes, err := r.load()
	if err != nil {
		return 0, err
	}
	var affected int64
	for i := range quotes {
		// 已经到 0 的行不算，与 SQL 实现的 affected 口径一致
		if quotes[i].LastAccessedAt.Before(cutoff) && quotes[i].Confidence > 0 {
			quotes[i].Confidence = model.ClampConfidence(quotes[i].Confidence - step)
			affected++
		}
	}
	if affected == 0 {
		return 0, nil
	}
	return affected, r.store(quotes)
}

func indexOf(quotes []model.Quote, id int64) int {
	for i := range quotes {
		if quotes[i].ID == id {
			return i
		}
	}
	return -1
}

func matchesFilter(q *model.Quote, filter QuoteFilter) bool {
	if filter.Category != "" && filter.Category != model.CategoryAll && q.Category != filter.Category {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{q.Title, q.Content, q.Author, q.Comment} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// sortQuotes 与 quoteListOrder 保持一致
func sortQuotes(quotes []model.Quote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := &quotes[i], &quotes[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
