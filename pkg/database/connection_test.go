package database

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biyonik/dml-composer/pkg/cache"
	"github.com/biyonik/dml-composer/pkg/events"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// CONNECTION TESTLERİ (sqlmock)
// -----------------------------------------------------------------------------

var discardLogger = log.New(io.Discard, "", 0)

func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	conn := NewConnection(db, NewMySQLGrammar(), discardLogger)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = conn.Close()
	})
	return conn, mock
}

// recorder, dispatcher'a gelen event adlarını toplar.
type recorder struct {
	mu    sync.Mutex
	names []string
	stmts []events.Statement
}

func (r *recorder) Handle(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, e.Name())
	if s, ok := events.StatementOf(e); ok {
		r.stmts = append(r.stmts, s)
	}
	return nil
}

func attachRecorder(conn *Connection) *recorder {
	rec := &recorder{}
	d := events.NewDispatcher(discardLogger)
	d.Listen(events.Wildcard, rec)
	conn.SetDispatcher(d)
	return rec
}

func TestConnection_EscapeString(t *testing.T) {
	conn, _ := newMockConnection(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"plain", "plain"},
		{"O'Reilly", `O\'Reilly`},
		{`say "hi"`, `say \"hi\"`},
		{`C:\path`, `C:\\path`},
		{"a\nb\rc", `a\nb\rc`},
		{"nul\x00", `nul\0`},
		{"ctrl\x1aZ", `ctrl\ZZ`},
	}

	for _, tt := range tests {
		got, err := conn.EscapeString(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestConnection_EscapeString_NoBackslashEscapes(t *testing.T) {
	conn, _ := newMockConnection(t)
	conn.SetNoBackslashEscapes(true)

	got, err := conn.EscapeString(`it's C:\dir`)
	require.NoError(t, err)
	assert.Equal(t, `it''s C:\dir`, got)
}

func TestConnection_AsEscaper(t *testing.T) {
	conn, _ := newMockConnection(t)
	qb := conn.NewBuilder()

	lit, err := qb.Value(conn, "ali'; DROP TABLE users; --", "", "")
	require.NoError(t, err)

	stmt := qb.Select("id", true, false).From("users", true).WhereOp("name", "=", lit).GetSelectQuery()
	assert.Equal(t, "SELECT `id` FROM `users` WHERE `name` = 'ali\\'; DROP TABLE users; --'", stmt)
}

func TestConnection_Closed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	conn := NewConnection(db, nil, discardLogger)
	assert.Equal(t, "mysql", conn.Grammar().Name())

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = conn.EscapeString("x")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = conn.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = conn.Exec(context.Background(), "DELETE FROM t")
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = conn.NewBuilder().Value(conn, "x", "", "")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConnection_Query(t *testing.T) {
	conn, mock := newMockConnection(t)
	rec := attachRecorder(conn)

	stmt := "SELECT `id`, `name` FROM `users`"
	mock.ExpectQuery(stmt).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("ali")).
			AddRow(int64(2), nil),
	)

	result, err := conn.Query(context.Background(), stmt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"id", "name"}, result.Columns)
	assert.Equal(t, 2, result.Len())
	assert.Equal(t, "ali", result.Rows[0][1])
	assert.Nil(t, result.Rows[1][1])
	assert.Equal(t, map[string]interface{}{"id": int64(1), "name": "ali"}, result.Maps()[0])

	require.Equal(t, []string{events.EventStatementExecuted}, rec.names)
	assert.Equal(t, stmt, rec.stmts[0].SQL)
	assert.EqualValues(t, 2, rec.stmts[0].Rows)
}

func TestConnection_Query_Errors(t *testing.T) {
	conn, mock := newMockConnection(t)
	rec := attachRecorder(conn)

	_, err := conn.Query(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyStatement)

	driverErr := errors.New("unknown column")
	mock.ExpectQuery("SELECT x FROM t").WillReturnError(driverErr)

	_, err = conn.Query(context.Background(), "SELECT x FROM t")
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "query failed")

	require.Equal(t, []string{events.EventStatementFailed}, rec.names)
	assert.Equal(t, driverErr, rec.stmts[0].Err)
}

func TestConnection_Exec(t *testing.T) {
	conn, mock := newMockConnection(t)
	rec := attachRecorder(conn)

	stmt := conn.NewBuilder().Update("users", true).SetValue("active", "0", true).Where("id = 1").GetUpdateQuery()
	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := conn.Exec(context.Background(), stmt)
	require.NoError(t, err)
	affected, _ := res.RowsAffected()
	assert.EqualValues(t, 3, affected)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Equal(t, []string{events.EventStatementExecuted}, rec.names)
	assert.EqualValues(t, 3, rec.stmts[0].Rows)

	_, err = conn.Exec(context.Background(), conn.NewBuilder().GetDeleteQuery())
	assert.ErrorIs(t, err, ErrEmptyStatement)

	mock.ExpectExec("DELETE FROM t").WillReturnError(errors.New("lock wait timeout"))
	_, err = conn.Exec(context.Background(), "DELETE FROM t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec failed")
}

func TestConnection_CachedQuery(t *testing.T) {
	conn, mock := newMockConnection(t)
	rec := attachRecorder(conn)

	mc := cache.NewMemoryCache(discardLogger)
	t.Cleanup(func() { _ = mc.Close() })
	conn.SetResultCache(mc)

	stmt := "SELECT `id` FROM `users`"
	mock.ExpectQuery(stmt).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1").AddRow("2"))

	ctx := context.Background()
	first, err := conn.CachedQuery(ctx, stmt, time.Minute)
	require.NoError(t, err)
	second, err := conn.CachedQuery(ctx, stmt, time.Minute)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, first, second)
	assert.Equal(t, []interface{}{"1"}, second.Rows[0])
	assert.Equal(t, []string{events.EventStatementExecuted, events.EventCacheMiss, events.EventCacheHit}, rec.names)

	require.NoError(t, conn.Forget(ctx, stmt))
	_, err = mc.Get(ctx, CacheKey(stmt))
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestConnection_CachedQuery_WithoutCache(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	result, err := conn.CachedQuery(context.Background(), "SELECT 1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())
	require.NoError(t, conn.Forget(context.Background(), "SELECT 1"))
}

func TestConnection_CachedQuery_PreservesNumbers(t *testing.T) {
	conn, mock := newMockConnection(t)

	mc := cache.NewMemoryCache(discardLogger)
	t.Cleanup(func() { _ = mc.Close() })
	conn.SetResultCache(mc)

	stmt := "SELECT `id`, `total`, `ratio`, `note` FROM `orders`"
	mock.ExpectQuery(stmt).WillReturnRows(
		sqlmock.NewRows([]string{"id", "total", "ratio", "note"}).
			AddRow(int64(9007199254740993), int64(1000000), 1.5, nil),
	)

	want := []interface{}{int64(9007199254740993), int64(1000000), 1.5, nil}

	ctx := context.Background()
	miss, err := conn.CachedQuery(ctx, stmt, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, want, miss.Rows[0])

	hit, err := conn.CachedQuery(ctx, stmt, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, want, hit.Rows[0])
	assert.Equal(t, miss.Columns, hit.Columns)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_DispatchOnlyToListenedEvents(t *testing.T) {
	conn, mock := newMockConnection(t)

	rec := &recorder{}
	d := events.NewDispatcher(discardLogger)
	d.Listen(events.EventStatementFailed, rec)
	conn.SetDispatcher(d)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	_, err := conn.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Empty(t, rec.names)

	mock.ExpectQuery("SELECT x").WillReturnError(errors.New("unknown column"))
	_, err = conn.Query(context.Background(), "SELECT x")
	require.Error(t, err)
	assert.Equal(t, []string{events.EventStatementFailed}, rec.names)
}

func TestDecodeResult(t *testing.T) {
	res, err := decodeResult([]byte(`{"columns":["a","b"],"rows":[[12345678901234567,"x"],[2.25,null]]}`))
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{int64(12345678901234567), "x"}, {2.25, nil}}, res.Rows)

	empty, err := decodeResult([]byte(`{"columns":["a"],"rows":null}`))
	require.NoError(t, err)
	assert.NotNil(t, empty.Rows)
	assert.Equal(t, 0, empty.Len())

	_, err = decodeResult([]byte(`not json`))
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("SELECT 1")
	assert.Equal(t, a, CacheKey("SELECT 1"))
	assert.NotEqual(t, a, CacheKey("SELECT 2"))
	assert.Regexp(t, `^query:[0-9a-f]+$`, a)
}

func TestConnectionConfig_FormatDSN(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.User = "app"
	cfg.Password = "secret"
	cfg.Database = "shop"

	dsn, err := cfg.FormatDSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "app:secret@tcp(127.0.0.1:3306)/shop")

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, "utf8mb4", parsed.Params["charset"])
}

func TestConnectionConfig_FormatDSN_Explicit(t *testing.T) {
	cfg := ConnectionConfig{DSN: "root@tcp(db:3306)/app"}
	dsn, err := cfg.FormatDSN()
	require.NoError(t, err)
	assert.Equal(t, "root@tcp(db:3306)/app", dsn)

	cfg.DSN = "root@tcp(db:3306"
	_, err = cfg.FormatDSN()
	assert.Error(t, err)

	_, err = ConnectionConfig{}.FormatDSN()
	assert.Error(t, err)
}
