package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeed_PopulatesEmptyDatabase(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rules")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	for i := range defaultRules {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rules")).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(i + 1)))
	}

	err := Seed(context.Background(), db, "admin-key-123", "member-key-456", zap.NewNop())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_SkipsPopulatedTables(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rules")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	err := Seed(context.Background(), db, "admin-key-123", "member-key-456", zap.NewNop())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultRules_AllPatternsCompile(t *testing.T) {
	for _, seed := range defaultRules {
		_, err := regexp.Compile(seed.pattern)
		assert.NoError(t, err, "pattern %q must compile", seed.pattern)
	}
}
