package postgres

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string        { return &s }
func int64Ptr(n int64) *int64        { return &n }
func timePtr(t time.Time) *time.Time { return &t }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var returningColumns = []string{"id", "created_at", "updated_at"}
