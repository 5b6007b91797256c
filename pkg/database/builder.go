package database

import (
	"fmt"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// QUERY BUILDER: CLAUSE STORE
// -----------------------------------------------------------------------------
// QueryBuilder, SQL statement'ını bağımsız slot'lardan parça parça biriktirir.
// Accumulator metodları herhangi bir sırada çağrılabilir; finalizer'lar
// (GetSelectQuery, GetDeleteQuery, ...) slot'ları statement türüne göre sabit
// sırada birleştirir.
//
// Hata politikası:
// - Geçersiz keyword, operatör veya JOIN tipi sessizce düşürülür
// - SELECT ile başlamayan select_statement temizlenir
// - Eksik statement (örn: FROM olmadan SELECT) boş string üretir
//
// QueryBuilder concurrent kullanım için güvenli değildir. Her statement
// kendi builder'ına sahip olmalıdır.
// -----------------------------------------------------------------------------

// QueryBuilder, tek bir DML statement'ının slot'larını tutar.
type QueryBuilder struct {
	grammar Grammar

	// Tam metin olarak saklanan slot'lar (select, from, into, limit, ...)
	text map[Clause]string

	modes   map[Clause][]Mode
	wheres  []WhereClause
	havings []WhereClause
	groups  []OrderClause
	orders  []OrderClause
	joins   []string
	sets    []string
	rows    []string
	upserts []string
}

// NewBuilder, verilen grammar ile boş bir QueryBuilder üretir.
// grammar nil ise generic BaseGrammar kullanılır.
//
// Örnek:
//
//	qb := NewBuilder(NewMySQLGrammar())
//	sql := qb.SelectMode("DISTINCT").Select("id", true, false).
//	    From("users", true).GetSelectQuery()
//	// SELECT DISTINCT `id` FROM `users`
func NewBuilder(grammar Grammar) *QueryBuilder {
	if grammar == nil {
		grammar = NewBaseGrammar()
	}
	return &QueryBuilder{
		grammar: grammar,
		text:    make(map[Clause]string),
		modes:   make(map[Clause][]Mode),
	}
}

// Grammar, builder'ın kullandığı lehçeyi döndürür.
func (qb *QueryBuilder) Grammar() Grammar {
	return qb.grammar
}

// appendText, slot'un mevcut içeriğine ayraç ile ekleme yapar.
func (qb *QueryBuilder) appendText(slot Clause, part, separator string) {
	if existing := qb.text[slot]; existing != "" {
		qb.text[slot] = existing + separator + part
		return
	}
	qb.text[slot] = part
}

// replaceText, slot'un içeriğini değiştirir; boş içerik slot'u temizler.
func (qb *QueryBuilder) replaceText(slot Clause, content string) {
	if content == "" {
		delete(qb.text, slot)
		return
	}
	qb.text[slot] = content
}

// identifier, escape bayrağına göre tablo ifadesini quote eder veya olduğu
// gibi bırakır. Quote edilirken "users u" gibi örtük alias "users AS u"
// olarak ele alınır.
//
// Örnek:
//
//	qb.identifier("users u", true) → `users` AS `u`
func (qb *QueryBuilder) identifier(raw string, escape bool) string {
	raw = strings.TrimSpace(raw)
	if !escape {
		return raw
	}

	items := strings.Split(raw, ",")
	for i, item := range items {
		items[i] = explicitAlias(item)
	}
	return qb.EscapeAlias(strings.Join(items, ","), false)
}

// explicitAlias, "table alias" biçimini "table AS alias" biçimine çevirir.
// AS içeren veya iki parçadan oluşmayan ifadeler değişmez.
func explicitAlias(item string) string {
	if aliasSeparator.MatchString(item) {
		return item
	}
	fields := strings.Fields(item)
	if len(fields) != 2 {
		return item
	}
	return fields[0] + " AS " + fields[1]
}

// -----------------------------------------------------------------------------
// MODE SETTERS
// -----------------------------------------------------------------------------

func (qb *QueryBuilder) setMode(slot Clause, keyword string) *QueryBuilder {
	m, ok := ParseMode(keyword)
	if !ok {
		return qb
	}
	qb.modes[slot] = applyMode(qb.modes[slot], qb.grammar.Vocabulary(slot), m)
	return qb
}

// SelectMode, SELECT modifier'ı ekler (DISTINCT, SQL_CACHE, STRAIGHT_JOIN, ...).
//
// Örnek:
//
//	qb.SelectMode("ALL").SelectMode("DISTINCT") // yalnızca DISTINCT kalır
func (qb *QueryBuilder) SelectMode(keyword string) *QueryBuilder {
	return qb.setMode(ClauseSelectMode, keyword)
}

// DeleteMode, DELETE modifier'ı ekler (LOW_PRIORITY, QUICK, IGNORE).
func (qb *QueryBuilder) DeleteMode(keyword string) *QueryBuilder {
	return qb.setMode(ClauseDeleteMode, keyword)
}

// InsertMode, INSERT modifier'ı ekler (LOW_PRIORITY, DELAYED, HIGH_PRIORITY, IGNORE).
func (qb *QueryBuilder) InsertMode(keyword string) *QueryBuilder {
	return qb.setMode(ClauseInsertMode, keyword)
}

// ReplaceMode, REPLACE modifier'ı ekler (LOW_PRIORITY, DELAYED).
func (qb *QueryBuilder) ReplaceMode(keyword string) *QueryBuilder {
	return qb.setMode(ClauseReplaceMode, keyword)
}

// UpdateMode, UPDATE modifier'ı ekler (LOW_PRIORITY, IGNORE).
func (qb *QueryBuilder) UpdateMode(keyword string) *QueryBuilder {
	return qb.setMode(ClauseUpdateMode, keyword)
}

// LockMode, SELECT sonuna kilit ifadesi ekler (FOR UPDATE, LOCK IN SHARE MODE, NOWAIT, ...).
func (qb *QueryBuilder) LockMode(keyword string) *QueryBuilder {
	return qb.setMode(ClauseLockMode, keyword)
}

// Modes, mode slot'undaki keyword'lerin kopyasını döndürür.
func (qb *QueryBuilder) Modes(slot Clause) []Mode {
	return append([]Mode(nil), qb.modes[slot]...)
}

// -----------------------------------------------------------------------------
// SELECT / FROM / JOIN
// -----------------------------------------------------------------------------

// Select, seçilecek kolon ifadesini ekler. Birden fazla çağrı ", " ile birleşir.
//
// Parametreler:
//   - column: Kolon listesi ("id, name AS n" veya "COUNT(*)")
//   - escape: true ise kolonlar ve alias'lar quote edilir
//   - hex: true ise kolonlar HEX(...) ile sarılır (escape'i içerir)
//
// Örnek:
//
//	qb.Select("id", true, false).Select("avatar AS a", true, true)
//	→ `id`, HEX(`avatar`) AS `a`
func (qb *QueryBuilder) Select(column string, escape, hex bool) *QueryBuilder {
	if escape || hex {
		column = qb.EscapeAlias(column, hex)
	}
	column = strings.TrimSpace(column)
	if column == "" {
		return qb
	}
	qb.appendText(ClauseSelect, column, ", ")
	return qb
}

// From, hedef tabloyu belirler. Sonraki çağrılar öncekinin yerini alır.
//
// Örnek:
//
//	qb.From("users", true, IndexHint{Action: ForceIndex, Indexes: []string{"idx_email"}})
//	→ FROM `users` FORCE INDEX (`idx_email`)
func (qb *QueryBuilder) From(table string, escape bool, hints ...IndexHint) *QueryBuilder {
	table = qb.identifier(table, escape)
	if table == "" {
		qb.replaceText(ClauseFrom, "")
		return qb
	}

	parts := []string{"FROM", table}
	for _, hint := range hints {
		if compiled, ok := qb.grammar.CompileIndexHint(hint); ok {
			parts = append(parts, compiled)
		}
	}
	qb.replaceText(ClauseFrom, strings.Join(parts, " "))
	return qb
}

// Join, ham ON koşulu ile JOIN ekler. Geçersiz JOIN tipi düşürülür.
//
// Örnek:
//
//	qb.Join(LeftJoin, "posts p", false, "p.user_id = u.id")
//	→ LEFT JOIN posts p ON p.user_id = u.id
func (qb *QueryBuilder) Join(kind JoinType, table string, escape bool, on string) *QueryBuilder {
	kind = JoinType(strings.ToUpper(strings.TrimSpace(string(kind))))
	table = qb.identifier(table, escape)
	if !kind.valid() || table == "" {
		return qb
	}

	join := string(kind) + " JOIN " + table
	if on = strings.TrimSpace(on); on != "" && kind != CrossJoin {
		join += " ON " + on
	}
	qb.joins = append(qb.joins, join)
	return qb
}

// JoinOn, JoinClause'daki tablo ve kolonları quote ederek JOIN ekler.
// Operatör whitelist dışındaysa JOIN düşürülür.
func (qb *QueryBuilder) JoinOn(j JoinClause) *QueryBuilder {
	if j.Type == CrossJoin {
		return qb.Join(j.Type, j.Table, true, "")
	}

	operator, ok := normalizeOperator(j.Operator)
	if !ok || strings.TrimSpace(j.First) == "" || strings.TrimSpace(j.Second) == "" {
		return qb
	}
	on := fmt.Sprintf("%s %s %s", qb.EscapeColumnName(j.First), operator, qb.EscapeColumnName(j.Second))
	return qb.Join(j.Type, j.Table, true, on)
}

// -----------------------------------------------------------------------------
// WHERE / HAVING
// -----------------------------------------------------------------------------

func normalizeOperator(operator string) (string, bool) {
	op := strings.ToUpper(strings.Join(strings.Fields(operator), " "))
	return op, allowedOperators[op]
}

func appendCondition(list []WhereClause, expr, boolean string) []WhereClause {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return list
	}
	return append(list, WhereClause{Expr: expr, Boolean: boolean})
}

// comparison, kolon + operatör + literal ifadesini kurar.
func (qb *QueryBuilder) comparison(column, operator, literal string) (string, bool) {
	op, ok := normalizeOperator(operator)
	if !ok || strings.TrimSpace(column) == "" {
		return "", false
	}

	literal = strings.TrimSpace(literal)
	if literal == "" {
		if op != "IS" && op != "IS NOT" {
			return "", false
		}
		literal = "NULL"
	}
	return fmt.Sprintf("%s %s %s", qb.EscapeColumnName(column), op, literal), true
}

// Where, ham koşulu AND ile ekler.
//
// Örnek:
//
//	qb.Where("status = 'active'").Where("age > 18")
//	→ WHERE status = 'active' AND age > 18
func (qb *QueryBuilder) Where(expr string) *QueryBuilder {
	qb.wheres = appendCondition(qb.wheres, expr, "AND")
	return qb
}

// OrWhere, ham koşulu OR ile ekler.
func (qb *QueryBuilder) OrWhere(expr string) *QueryBuilder {
	qb.wheres = appendCondition(qb.wheres, expr, "OR")
	return qb
}

// WhereOp, kolonu quote edip whitelist'teki operatör ile koşul ekler.
// literal, Value/ValueList ile üretilmiş hazır bir SQL literal'idir.
//
// Örnek:
//
//	lit, _ := qb.Value(conn, "active", "", "")
//	qb.WhereOp("users.status", "=", lit)
//	→ WHERE `users`.`status` = 'active'
//
//	qb.WhereOp("deleted_at", "IS", "")
//	→ WHERE `deleted_at` IS NULL
func (qb *QueryBuilder) WhereOp(column, operator, literal string) *QueryBuilder {
	if expr, ok := qb.comparison(column, operator, literal); ok {
		qb.wheres = appendCondition(qb.wheres, expr, "AND")
	}
	return qb
}

// OrWhereOp, WhereOp'un OR versiyonudur.
func (qb *QueryBuilder) OrWhereOp(column, operator, literal string) *QueryBuilder {
	if expr, ok := qb.comparison(column, operator, literal); ok {
		qb.wheres = appendCondition(qb.wheres, expr, "OR")
	}
	return qb
}

// Having, ham HAVING koşulunu AND ile ekler.
func (qb *QueryBuilder) Having(expr string) *QueryBuilder {
	qb.havings = appendCondition(qb.havings, expr, "AND")
	return qb
}

// OrHaving, ham HAVING koşulunu OR ile ekler.
func (qb *QueryBuilder) OrHaving(expr string) *QueryBuilder {
	qb.havings = appendCondition(qb.havings, expr, "OR")
	return qb
}

// HavingOp, WhereOp'un HAVING karşılığıdır.
func (qb *QueryBuilder) HavingOp(column, operator, literal string) *QueryBuilder {
	if expr, ok := qb.comparison(column, operator, literal); ok {
		qb.havings = appendCondition(qb.havings, expr, "AND")
	}
	return qb
}

// -----------------------------------------------------------------------------
// GROUP BY / ORDER BY / LIMIT
// -----------------------------------------------------------------------------

func appendOrder(list []OrderClause, column string, direction OrderDirection) []OrderClause {
	column = strings.TrimSpace(column)
	if column == "" {
		return list
	}
	return append(list, OrderClause{Column: column, Direction: ParseDirection(string(direction))})
}

// GroupBy, gruplama ifadesi ekler. OrderNone ile yön suffix'i yazılmaz.
func (qb *QueryBuilder) GroupBy(column string, direction OrderDirection) *QueryBuilder {
	qb.groups = appendOrder(qb.groups, column, direction)
	return qb
}

// OrderBy, sıralama ifadesi ekler.
//
// Örnek:
//
//	qb.OrderBy("created_at", OrderDesc).OrderBy("id", OrderNone)
//	→ ORDER BY created_at DESC, id
func (qb *QueryBuilder) OrderBy(column string, direction OrderDirection) *QueryBuilder {
	qb.orders = appendOrder(qb.orders, column, direction)
	return qb
}

// NoOffset, Limit'e verildiğinde OFFSET yazılmaz. MySQL'in tek tablolu
// DELETE ve UPDATE biçimleri yalnızca LIMIT row_count kabul eder.
const NoOffset = -1

// Limit, LIMIT/OFFSET slot'unu değiştirir. Negatif count slot'u temizler,
// negatif offset (NoOffset) OFFSET kısmını atlar.
//
// Örnek:
//
//	qb.Limit(10, 0)        → LIMIT 10 OFFSET 0
//	qb.Limit(10, NoOffset) → LIMIT 10
func (qb *QueryBuilder) Limit(count, offset int) *QueryBuilder {
	switch {
	case count < 0:
		qb.replaceText(ClauseLimit, "")
	case offset < 0:
		qb.replaceText(ClauseLimit, fmt.Sprintf("LIMIT %d", count))
	default:
		qb.replaceText(ClauseLimit, fmt.Sprintf("LIMIT %d OFFSET %d", count, offset))
	}
	return qb
}

// -----------------------------------------------------------------------------
// DELETE / UPDATE / INSERT PAYLOAD
// -----------------------------------------------------------------------------

// Delete, çok tablolu DELETE için silinecek tablo listesine ekleme yapar.
//
// Örnek:
//
//	qb.Delete("t1").Delete("t2.*") → t1, t2.*
func (qb *QueryBuilder) Delete(raw string) *QueryBuilder {
	if raw = strings.TrimSpace(raw); raw != "" {
		qb.appendText(ClauseDelete, raw, ", ")
	}
	return qb
}

// Update, UPDATE edilecek tabloyu belirler (replace).
func (qb *QueryBuilder) Update(table string, escape bool) *QueryBuilder {
	qb.replaceText(ClauseUpdate, qb.identifier(table, escape))
	return qb
}

// Into, INSERT/REPLACE hedef tablosunu belirler (replace).
func (qb *QueryBuilder) Into(table string, escape bool) *QueryBuilder {
	table = qb.identifier(table, escape)
	if table == "" {
		qb.replaceText(ClauseInto, "")
		return qb
	}
	qb.replaceText(ClauseInto, "INTO "+table)
	return qb
}

// ColumnNames, INSERT kolon listesini belirler (replace).
//
// Örnek:
//
//	qb.ColumnNames([]string{"column1", "column2"}, false) → (column1, column2)
func (qb *QueryBuilder) ColumnNames(columns []string, escape bool) *QueryBuilder {
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		if column = strings.TrimSpace(column); column == "" {
			continue
		}
		if escape {
			column = qb.EscapeColumnName(column)
		}
		names = append(names, column)
	}

	if len(names) == 0 {
		qb.replaceText(ClauseColumnNames, "")
		return qb
	}
	qb.replaceText(ClauseColumnNames, "("+strings.Join(names, ", ")+")")
	return qb
}

// Values, bir veya daha fazla satır ekler. Değerler hazır SQL literal'leridir.
//
// Örnek:
//
//	qb.Values([]string{"1", "2"}, []string{"3", "4"}) → VALUES (1, 2), (3, 4)
func (qb *QueryBuilder) Values(rows ...[]string) *QueryBuilder {
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		qb.rows = append(qb.rows, "("+strings.Join(row, ", ")+")")
	}
	return qb
}

func (qb *QueryBuilder) assignment(column, literal string, escape bool) (string, bool) {
	column = strings.TrimSpace(column)
	if column == "" {
		return "", false
	}
	if escape {
		column = qb.EscapeColumnName(column)
	}
	return column + " = " + literal, true
}

// sortedKeys, map çıktısını deterministik yapmak için anahtarları sıralar.
func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetValue, SET listesine tek bir "kolon = değer" çifti ekler.
func (qb *QueryBuilder) SetValue(column, literal string, escape bool) *QueryBuilder {
	if pair, ok := qb.assignment(column, literal, escape); ok {
		qb.sets = append(qb.sets, pair)
	}
	return qb
}

// Set, map'teki çiftleri kolon adına göre sıralı olarak SET listesine ekler.
//
// Örnek:
//
//	qb.Set(map[string]string{"b": "2", "a": "1"}, true)
//	→ SET `a` = 1, `b` = 2
func (qb *QueryBuilder) Set(values map[string]string, escape bool) *QueryBuilder {
	for _, column := range sortedKeys(values) {
		qb.SetValue(column, values[column], escape)
	}
	return qb
}

// OnDuplicateKeyUpdate, INSERT için duplicate-key güncellemelerini ekler.
// Grammar desteklemiyorsa render sırasında düşürülür.
func (qb *QueryBuilder) OnDuplicateKeyUpdate(values map[string]string, escape bool) *QueryBuilder {
	for _, column := range sortedKeys(values) {
		if pair, ok := qb.assignment(column, values[column], escape); ok {
			qb.upserts = append(qb.upserts, pair)
		}
	}
	return qb
}

// SelectStatement, INSERT ... SELECT için alt sorguyu belirler (replace).
// SELECT ile başlamayan girdi slot'u temizler.
func (qb *QueryBuilder) SelectStatement(statement string) *QueryBuilder {
	statement = strings.TrimSpace(statement)
	if !isSelectStatement(statement) {
		qb.replaceText(ClauseSelectStatement, "")
		return qb
	}
	qb.replaceText(ClauseSelectStatement, statement)
	return qb
}

// SelectStatementFrom, başka bir builder'ın SELECT çıktısını alt sorgu yapar.
func (qb *QueryBuilder) SelectStatementFrom(sub *QueryBuilder) *QueryBuilder {
	if sub == nil {
		return qb.SelectStatement("")
	}
	return qb.SelectStatement(sub.GetSelectQuery())
}

func isSelectStatement(statement string) bool {
	const keyword = "SELECT"
	if len(statement) < len(keyword) || !strings.EqualFold(statement[:len(keyword)], keyword) {
		return false
	}
	if len(statement) == len(keyword) {
		return true
	}
	switch statement[len(keyword)] {
	case ' ', '\t', '\n', '\r', '(':
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// QUERY ASSEMBLER
// -----------------------------------------------------------------------------

func renderConditions(keyword string, conditions []WhereClause) string {
	if len(conditions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(keyword)
	for i, c := range conditions {
		if i > 0 {
			b.WriteString(" " + c.Boolean)
		}
		b.WriteString(" " + c.Expr)
	}
	return b.String()
}

func renderOrders(keyword string, list []OrderClause) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, len(list))
	for i, o := range list {
		parts[i] = o.String()
	}
	return keyword + " " + strings.Join(parts, ", ")
}

func renderList(keyword string, list []string) string {
	if len(list) == 0 {
		return ""
	}
	return keyword + " " + strings.Join(list, ", ")
}

// Fragment, tek bir slot'un render edilmiş halini döndürür.
// Boş veya bilinmeyen slot için "" döner.
func (qb *QueryBuilder) Fragment(slot Clause) string {
	if slot.isModeSlot() {
		return renderModes(qb.modes[slot])
	}

	switch slot {
	case ClauseJoin:
		return strings.Join(qb.joins, " ")
	case ClauseWhere:
		return renderConditions("WHERE", qb.wheres)
	case ClauseHaving:
		return renderConditions("HAVING", qb.havings)
	case ClauseGroupBy:
		return renderOrders("GROUP BY", qb.groups)
	case ClauseOrderBy:
		return renderOrders("ORDER BY", qb.orders)
	case ClauseSet:
		return renderList("SET", qb.sets)
	case ClauseValues:
		return renderList("VALUES", qb.rows)
	case ClauseOnDuplicate:
		upsert, _ := qb.grammar.CompileUpsert(qb.upserts)
		return upsert
	default:
		return qb.text[slot]
	}
}

// ImplodeQuery, verilen slot'ları sırayla tek boşlukla birleştirir.
// Boş ve bilinmeyen slot'lar atlanır; hiçbir slot katkı vermezse "" döner.
//
// Örnek:
//
//	qb.ImplodeQuery(ClauseFrom, ClauseWhere) → "FROM users WHERE id = 1"
//	qb.ImplodeQuery()                        → ""
func (qb *QueryBuilder) ImplodeQuery(components ...Clause) string {
	parts := make([]string, 0, len(components))
	for _, c := range components {
		if fragment := qb.Fragment(c); fragment != "" {
			parts = append(parts, fragment)
		}
	}
	return strings.Join(parts, " ")
}
