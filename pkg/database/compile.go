package database

import (
	"strings"
)

// -----------------------------------------------------------------------------
// STATEMENT FINALIZERS
// -----------------------------------------------------------------------------
// Her finalizer kendi statement türü için slot sırasını sabitler ve
// ImplodeQuery'yi çağırır. Zorunlu hedefi (FROM, INTO, UPDATE tablosu)
// eksik olan statement boş string olarak döner; çağıran taraf çalıştırmadan
// önce boşluk kontrolü yapmalıdır.
// -----------------------------------------------------------------------------

var (
	selectTail = []Clause{
		ClauseFrom, ClauseJoin, ClauseWhere, ClauseGroupBy,
		ClauseHaving, ClauseOrderBy, ClauseLimit, ClauseLockMode,
	}

	// Çok tablolu DELETE: ORDER BY / LIMIT yasaktır.
	multiTableDelete = []Clause{ClauseDeleteMode, ClauseDelete, ClauseFrom, ClauseJoin, ClauseWhere}

	singleTableDelete = []Clause{ClauseDeleteMode, ClauseFrom, ClauseWhere, ClauseOrderBy, ClauseLimit}

	updateOrder = []Clause{
		ClauseUpdateMode, ClauseUpdate, ClauseJoin, ClauseSet,
		ClauseWhere, ClauseOrderBy, ClauseLimit,
	}
)

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// GetSelectQuery, SELECT statement'ını üretir.
// Sıra: select_mode, select, from, join, where, group_by, having,
// order_by, limit, lock_mode. FROM yoksa "" döner; kolon yoksa "*" kullanılır.
//
// Örnek:
//
//	qb.SelectMode("DISTINCT").SelectMode("SQL_CACHE").
//	    Select("col", false, false).From("table", false)
//	qb.GetSelectQuery() → "SELECT DISTINCT SQL_CACHE col FROM table"
func (qb *QueryBuilder) GetSelectQuery() string {
	if qb.Fragment(ClauseFrom) == "" {
		return ""
	}

	columns := qb.Fragment(ClauseSelect)
	if columns == "" {
		columns = "*"
	}

	return joinNonEmpty("SELECT", qb.ImplodeQuery(ClauseSelectMode), columns, qb.ImplodeQuery(selectTail...))
}

// GetDeleteQuery, DELETE statement'ını üretir.
//
// delete slot'u doluysa çok tablolu form kullanılır ve ORDER BY / LIMIT
// set edilmiş olsa bile yazılmaz. Boşsa tek tablolu form ORDER BY ve LIMIT
// taşıyabilir. FROM yoksa "" döner.
//
// Örnek:
//
//	qb.From("table", false).OrderBy("col", OrderAsc).Limit(10, 0)
//	qb.GetDeleteQuery() → "DELETE FROM table ORDER BY col ASC LIMIT 10 OFFSET 0"
func (qb *QueryBuilder) GetDeleteQuery() string {
	if qb.Fragment(ClauseFrom) == "" {
		return ""
	}

	if qb.Fragment(ClauseDelete) != "" {
		return joinNonEmpty("DELETE", qb.ImplodeQuery(multiTableDelete...))
	}
	return joinNonEmpty("DELETE", qb.ImplodeQuery(singleTableDelete...))
}

// GetInsertQuery, INSERT statement'ını üretir.
//
// Payload önceliği: select_statement > set > values. İlk eşleşen form
// kullanılır. INTO veya payload yoksa "" döner.
//
// Örnek:
//
//	qb.Into("table", false).ColumnNames([]string{"column1", "column2"}, false).
//	    Values([]string{"1", "2"}, []string{"3", "4"})
//	qb.GetInsertQuery() → "INSERT INTO table (column1, column2) VALUES (1, 2), (3, 4)"
func (qb *QueryBuilder) GetInsertQuery() string {
	return qb.compileInsert("INSERT", ClauseInsertMode, true)
}

// GetReplaceQuery, REPLACE statement'ını üretir. Kurallar INSERT ile aynıdır,
// ON DUPLICATE KEY UPDATE hiçbir zaman eklenmez.
func (qb *QueryBuilder) GetReplaceQuery() string {
	return qb.compileInsert("REPLACE", ClauseReplaceMode, false)
}

func (qb *QueryBuilder) compileInsert(keyword string, modeSlot Clause, upsert bool) string {
	if qb.Fragment(ClauseInto) == "" {
		return ""
	}

	var payload []Clause
	switch {
	case qb.Fragment(ClauseSelectStatement) != "":
		payload = []Clause{ClauseColumnNames, ClauseSelectStatement}
	case qb.Fragment(ClauseSet) != "":
		payload = []Clause{ClauseSet}
	case qb.Fragment(ClauseValues) != "":
		payload = []Clause{ClauseColumnNames, ClauseValues}
	default:
		return ""
	}

	components := append([]Clause{modeSlot, ClauseInto}, payload...)
	if upsert {
		components = append(components, ClauseOnDuplicate)
	}
	return joinNonEmpty(keyword, qb.ImplodeQuery(components...))
}

// GetUpdateQuery, UPDATE statement'ını üretir.
// Sıra: update_mode, update, join, set, where, order_by, limit.
// Tablo veya SET yoksa "" döner.
func (qb *QueryBuilder) GetUpdateQuery() string {
	if qb.Fragment(ClauseUpdate) == "" || qb.Fragment(ClauseSet) == "" {
		return ""
	}
	return joinNonEmpty("UPDATE", qb.ImplodeQuery(updateOrder...))
}

// Compile, statement türüne göre ilgili finalizer'ı çağırır.
func (qb *QueryBuilder) Compile(kind StatementKind) string {
	switch kind {
	case KindSelect:
		return qb.GetSelectQuery()
	case KindInsert:
		return qb.GetInsertQuery()
	case KindReplace:
		return qb.GetReplaceQuery()
	case KindDelete:
		return qb.GetDeleteQuery()
	case KindUpdate:
		return qb.GetUpdateQuery()
	default:
		return ""
	}
}
