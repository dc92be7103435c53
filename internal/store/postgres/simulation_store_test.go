package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

func TestBuildListQueryNoFilters(t *testing.T) {
	query, args := buildListQuery("", domain.ListOpts{})

	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.NotContains(t, query, "LIMIT")
	assert.NotContains(t, query, "OFFSET")
	assert.Empty(t, args)
}

func TestBuildListQueryAllFilters(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildListQuery("BTCUSDT", domain.ListOpts{
		Limit:  50,
		Offset: 100,
		Since:  &since,
		Until:  &until,
	})

	assert.Contains(t, query, "symbol = $1")
	assert.Contains(t, query, "created_at >= $2")
	assert.Contains(t, query, "created_at < $3")
	assert.Contains(t, query, "LIMIT $4")
	assert.Contains(t, query, "OFFSET $5")

	require.Len(t, args, 5)
	assert.Equal(t, "BTCUSDT", args[0])
	assert.Equal(t, since, args[1])
	assert.Equal(t, until, args[2])
	assert.Equal(t, 50, args[3])
	assert.Equal(t, 100, args[4])
}

// The until bound is exclusive so an archive pass that lists with
// Until = cutoff and then deletes with DeleteBefore(cutoff) touches exactly
// the same rows; a record timestamped at the cutoff is left for the next
// pass instead of being uploaded twice.
func TestBuildListQueryUntilIsExclusive(t *testing.T) {
	until := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	query, _ := buildListQuery("", domain.ListOpts{Until: &until})

	assert.Contains(t, query, "created_at < $1")
	assert.NotContains(t, query, "created_at <=")
}
