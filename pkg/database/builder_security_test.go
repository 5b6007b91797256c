package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// SQL INJECTION GÜVENLİK TESTLERİ
// -----------------------------------------------------------------------------
// Bu testler, quote edilen identifier'ların ve escape edilen literal'lerin
// saldırı girdilerini etkisiz hale getirdiğini doğrular. Her test case bir
// exploit senaryosunu simüle eder.
// -----------------------------------------------------------------------------

// noopExecutor, yalnızca escape için bağlantı gerektiren testlerde kullanılır.
type noopExecutor struct{}

func (noopExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, sql.ErrConnDone
}

func (noopExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

var maliciousIdentifiers = []struct {
	name  string
	input string
}{
	{"DROP TABLE attack", "id; DROP TABLE users--"},
	{"OR injection", "id' OR '1'='1"},
	{"UNION attack", "id UNION SELECT * FROM passwords--"},
	{"Comment injection", "id/**/OR/**/1=1"},
	{"Backtick breakout", "id` FROM users; DROP TABLE users; --"},
	{"Double backtick", "id``"},
}

// quotedOnly, escape edilmiş identifier'ın yalnızca tek bir quote edilmiş
// segmentten oluştuğunu doğrular: içerideki her backtick ikilenmiş olmalıdır.
func quotedOnly(t *testing.T, escaped string) {
	t.Helper()

	if !strings.HasPrefix(escaped, "`") || !strings.HasSuffix(escaped, "`") {
		t.Fatalf("Expected quoted identifier, got %s", escaped)
	}
	inner := escaped[1 : len(escaped)-1]
	if strings.Count(strings.ReplaceAll(inner, "``", ""), "`") != 0 {
		t.Errorf("Unescaped backtick leaked out of identifier: %s", escaped)
	}
}

// TestSQLInjection_EscapeColumnName, identifier quoting'in saldırıyı
// tek bir identifier içine hapsettiğini doğrular.
func TestSQLInjection_EscapeColumnName(t *testing.T) {
	qb := NewBuilder(NewMySQLGrammar())

	for _, tc := range maliciousIdentifiers {
		t.Run(tc.name, func(t *testing.T) {
			if strings.Contains(tc.input, ".") {
				t.Skip("dotted input is split into segments")
			}
			quotedOnly(t, qb.EscapeColumnName(tc.input))
		})
	}
}

// TestSQLInjection_BacktickBreakout, kapanış backtick'inin ikilendiğini doğrular.
func TestSQLInjection_BacktickBreakout(t *testing.T) {
	qb := NewBuilder(NewMySQLGrammar())

	got := qb.Select("id` FROM users; --", true, false).From("users", true).GetSelectQuery()
	expected := "SELECT `id`` FROM users; --` FROM `users`"

	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

// TestSQLInjection_WhereOperator, whitelist dışındaki operatörlerin
// koşulu tamamen düşürdüğünü doğrular.
func TestSQLInjection_WhereOperator(t *testing.T) {
	qb := NewBuilder(NewMySQLGrammar())

	maliciousOperators := []string{
		"= 1 OR 1=1 --",
		"; DROP TABLE users",
		"UNION SELECT",
		"",
	}

	for _, op := range maliciousOperators {
		qb.WhereOp("id", op, "1")
	}

	if fragment := qb.Fragment(ClauseWhere); fragment != "" {
		t.Errorf("Expected malicious operators to be dropped, got %s", fragment)
	}
}

// TestSQLInjection_ValueEscaping, literal escape'in tırnak kırmayı engellediğini doğrular.
func TestSQLInjection_ValueEscaping(t *testing.T) {
	qb := NewBuilder(NewMySQLGrammar())

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Quote breakout", "' OR '1'='1", `'\' OR \'1\'=\'1'`},
		{"Backslash quote", `\' OR 1=1 --`, `'\\\' OR 1=1 --'`},
		{"Stacked query", "x'; DROP TABLE users; --", `'x\'; DROP TABLE users; --'`},
		{"Null byte", "admin\x00", `'admin\0'`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := qb.Value(backslashEscaper, tc.input, "", "")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

// TestSQLInjection_NoBackslashEscapes, NO_BACKSLASH_ESCAPES modunda
// tek tırnağın ikilendiğini doğrular.
func TestSQLInjection_NoBackslashEscapes(t *testing.T) {
	conn := NewConnection(noopExecutor{}, NewMySQLGrammar(), discardLogger).SetNoBackslashEscapes(true)
	qb := conn.NewBuilder()

	got, err := qb.Value(conn, "' OR '1'='1", "", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := `''' OR ''1''=''1'`
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

// TestSQLInjection_SelectStatementPayload, INSERT ... SELECT payload'ının
// SELECT ile başlamayan girdileri reddettiğini doğrular.
func TestSQLInjection_SelectStatementPayload(t *testing.T) {
	payloads := []string{
		"DROP TABLE users",
		"; SELECT 1",
		"SELECTX FROM t",
		"/* SELECT */ DELETE FROM users",
	}

	for _, payload := range payloads {
		qb := NewBuilder(NewMySQLGrammar()).Into("archive", true).SelectStatement(payload)
		if got := qb.GetInsertQuery(); got != "" {
			t.Errorf("Expected empty INSERT for payload %q, got %s", payload, got)
		}
	}
}

// TestSQLInjection_IndexHintName, index adlarının quote edildiğini doğrular.
func TestSQLInjection_IndexHintName(t *testing.T) {
	qb := NewBuilder(NewMySQLGrammar()).From("users", true, IndexHint{
		Action:  ForceIndex,
		Indexes: []string{"idx`) ; DROP TABLE users; --"},
	})

	expected := "FROM `users` FORCE INDEX (`idx``) ; DROP TABLE users; --`)"
	if got := qb.Fragment(ClauseFrom); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

// BenchmarkEscapeAlias, identifier quoting maliyetini ölçer.
func BenchmarkEscapeAlias(b *testing.B) {
	qb := NewBuilder(NewMySQLGrammar())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qb.EscapeAlias("u.id, u.name AS n, u.avatar", false)
	}
}

// BenchmarkGetSelectQuery, tam bir SELECT derleme maliyetini ölçer.
func BenchmarkGetSelectQuery(b *testing.B) {
	qb := NewBuilder(NewMySQLGrammar()).
		SelectMode("DISTINCT").
		Select("id, name", true, false).
		From("users", true).
		Where("active = 1").
		OrderBy("created_at", OrderDesc).
		Limit(10, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = qb.GetSelectQuery()
	}
}
