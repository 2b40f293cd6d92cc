package querybuilder

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteBuilder(t *testing.T) *Builder {
	t.Helper()

	conn, err := NewConn(Credentials{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(context.Background(), `CREATE TABLE people (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)

	return New(conn)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newSQLiteBuilder(t)

	for i, name := range []string{"ada", "bob", "cy"} {
		id, err := b.Insert(ctx, "people", Pairs{}.Set("name", name).Set("age", 20+i))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	n, err := b.Update(ctx, "people", Pairs{}.Set("active", 1), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	records, err := b.SelectAll(ctx, "people", []string{"name", "active"}, Where("active", 1))
	require.NoError(t, err)
	assert.Len(t, records, 3)

	record, ok, err := b.Select(ctx, "people", []string{"name", "age"}, Where("id", 2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bob", record["name"])
	assert.Equal(t, int64(21), record["age"])

	n, err = b.Delete(ctx, "people", Where("name", "cy"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteSelectWithoutMatch(t *testing.T) {
	b := newSQLiteBuilder(t)

	record, ok, err := b.Select(context.Background(), "people", nil, Where("name", "nobody"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, record)
}

func TestSQLiteSelectAllLimitAndOrder(t *testing.T) {
	ctx := context.Background()
	b := newSQLiteBuilder(t)

	for i := 1; i <= 5; i++ {
		_, err := b.Insert(ctx, "people", Pairs{}.Set("name", fmt.Sprintf("p%d", i)).Set("age", i*10))
		require.NoError(t, err)
	}

	records, err := b.SelectAll(ctx, "people", nil, nil, WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = b.SelectAll(ctx, "people", []string{"age"}, nil, WithOrderBy("age"), WithSort("desc"), WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, []Record{{"age": int64(50)}, {"age": int64(40)}}, records)

	records, err = b.SelectAll(ctx, "people", []string{"age"}, nil, WithOrderBy("age"), WithSort("asc"), WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, []Record{{"age": int64(10)}, {"age": int64(20)}}, records)
}

func TestSQLiteDeleteWithoutConditionsEmptiesTable(t *testing.T) {
	ctx := context.Background()
	b := newSQLiteBuilder(t)

	for _, name := range []string{"a", "b"} {
		_, err := b.Insert(ctx, "people", Pairs{}.Set("name", name).Set("age", 1))
		require.NoError(t, err)
	}

	n, err := b.Delete(ctx, "people", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	records, err := b.SelectAll(ctx, "people", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteConstraintViolationIsStoreError(t *testing.T) {
	b := newSQLiteBuilder(t)

	_, err := b.Insert(context.Background(), "people", Pairs{}.Set("name", "no-age"))
	assert.ErrorIs(t, err, ErrQueryFailed)

	_, err = b.Insert(context.Background(), "missing_table", Pairs{}.Set("name", "x"))
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestConnReconnectsAfterClose(t *testing.T) {
	conn, err := NewConn(Credentials{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, conn.PingContext(context.Background()))
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	require.NoError(t, conn.PingContext(context.Background()))
	require.NoError(t, conn.Close())
}

func TestNewConnRejectsUnknownDriver(t *testing.T) {
	_, err := NewConn(Credentials{Driver: "oracle"})
	assert.Error(t, err)
}
