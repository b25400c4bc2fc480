package service

import (
	"context"
	"testing"

	"github.com/quotevault/backend/internal/apperr"
	"github.com/quotevault/backend/internal/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleBlocksForbiddenStatements(t *testing.T) {
	console := NewConsoleService(testRemoteBackends(t))
	ctx := context.Background()

	blocked := []string{
		"DROP TABLE quotes",
		"alter table quotes add column x int",
		"GRANT ALL ON *.* TO 'x'@'%'",
		"truncate quotes",
		"CREATE USER 'x'@'localhost'",
		"select 1 into outfile '/tmp/x'",
	}
	for _, statement := range blocked {
		_, err := console.Execute(ctx, statement)
		require.Error(t, err, "statement should be blocked: %s", statement)
		assert.Equal(t, 403, apperr.StatusOf(err))
	}
}

func TestConsoleKeywordMatchesWholeWordsOnly(t *testing.T) {
	backends := testRemoteBackends(t)
	console := NewConsoleService(backends)

	// "dropdown" 含 drop 子串但不是独立关键词，不应拦截
	rows, err := console.Execute(context.Background(), "SELECT 1 AS dropdown")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestConsoleExecutesSelect(t *testing.T) {
	backends := testRemoteBackends(t)
	bus := eventbus.NewQuoteEventBus()
	quoteSvc := NewQuoteService(testConfig(), backends, bus)
	console := NewConsoleService(backends)
	ctx := context.Background()

	_, err := quoteSvc.Add(ctx, AddQuoteRequest{Content: "控制台可见"})
	require.NoError(t, err)

	rows, err := console.Execute(ctx, "SELECT content FROM quotes")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "控制台可见", rows[0]["content"])
}

func TestConsoleUnavailableOnLocalBackend(t *testing.T) {
	console := NewConsoleService(testLocalBackends(t))

	_, err := console.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Equal(t, 503, apperr.StatusOf(err))
}
