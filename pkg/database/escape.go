// -----------------------------------------------------------------------------
// Escaping Engine
// -----------------------------------------------------------------------------
// Identifier quoting ve literal üretimi. Identifier'lar Grammar'ın quote
// karakteri ile sarılır; literal değerler dışarıdan verilen Escaper
// (genelde *Connection) üzerinden kaçırılır.
//
// Escaper builder içinde saklanmaz, her çağrıda parametre olarak alınır.
// Bağlantı yoksa Escaper'ın hatası aynen yukarı taşınır.
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotConnected, escape veya sorgu için açık bir bağlantı olmadığında döner.
var ErrNotConnected = errors.New("database connection not established")

// Escaper, ham string'i SQL literal'i içinde güvenle kullanılacak hale getirir.
// Dönen değer tırnak içermez.
type Escaper interface {
	EscapeString(raw string) (string, error)
}

// EscaperFunc, sıradan bir fonksiyonu Escaper'a dönüştürür.
type EscaperFunc func(raw string) (string, error)

func (f EscaperFunc) EscapeString(raw string) (string, error) {
	return f(raw)
}

// aliasSeparator, " AS " ayıracını büyük/küçük harf duyarsız yakalar.
var aliasSeparator = regexp.MustCompile(`(?i)\s+AS\s+`)

// EscapeColumnName, noktalı identifier'ın her segmentini quote eder.
// "*" segmenti olduğu gibi bırakılır.
//
// Örnek:
//
//	qb.EscapeColumnName("db.table.col") → `db`.`table`.`col`
//	qb.EscapeColumnName("table.*")      → `table`.*
func (qb *QueryBuilder) EscapeColumnName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	segments := strings.Split(raw, ".")
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "*" {
			segments[i] = segment
			continue
		}
		segments[i] = qb.grammar.QuoteIdentifier(segment)
	}
	return strings.Join(segments, ".")
}

// EscapeAlias, virgülle ayrılmış kolon listesini alias'ları ile birlikte quote eder.
//
// hex true ise kolon HEX(...) ile sarılır ve alias (yoksa kolonun kendi adı)
// AS hedefi olarak kullanılır. "*" her durumda dokunulmadan geçer.
//
// Örnek:
//
//	qb.EscapeAlias("col", false)          → `col`
//	qb.EscapeAlias("col AS alias", true)  → HEX(`col`) AS `alias`
//	qb.EscapeAlias("t.id, t.name AS n", false) → `t`.`id`, `t`.`name` AS `n`
func (qb *QueryBuilder) EscapeAlias(raw string, hex bool) string {
	items := strings.Split(raw, ",")
	escaped := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if item == "*" {
			escaped = append(escaped, item)
			continue
		}

		column, alias := item, ""
		if parts := aliasSeparator.Split(item, 2); len(parts) == 2 {
			column, alias = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}

		quoted := qb.EscapeColumnName(column)
		name := lastSegment(column)

		switch {
		case hex && name != "*":
			if alias == "" {
				alias = name
			}
			escaped = append(escaped, fmt.Sprintf("HEX(%s) AS %s", quoted, qb.grammar.QuoteIdentifier(alias)))
		case alias != "":
			escaped = append(escaped, quoted+" AS "+qb.grammar.QuoteIdentifier(alias))
		default:
			escaped = append(escaped, quoted)
		}
	}

	return strings.Join(escaped, ", ")
}

func lastSegment(identifier string) string {
	if i := strings.LastIndex(identifier, "."); i >= 0 {
		return strings.TrimSpace(identifier[i+1:])
	}
	return strings.TrimSpace(identifier)
}

// Value, ham değeri escape edip tek tırnaklı literal üretir.
//
// Parametreler:
//   - e: Escape yeteneği (bağlantı)
//   - raw: Ham değer
//   - collation: Boş değilse " COLLATE x" eklenir
//   - charset: Boş değilse literal önüne introducer eklenir
//
// Örnek:
//
//	qb.Value(conn, "O'Reilly", "", "")                    → 'O\'Reilly'
//	qb.Value(conn, "abc", "utf8mb4_bin", "utf8mb4")       → _utf8mb4 'abc' COLLATE utf8mb4_bin
func (qb *QueryBuilder) Value(e Escaper, raw, collation, charset string) (string, error) {
	literal, err := qb.quote(e, raw, charset)
	if err != nil {
		return "", err
	}
	return Collate(literal, collation), nil
}

// HexValue, Value ile aynıdır fakat literal UNHEX(...) ile sarılır.
func (qb *QueryBuilder) HexValue(e Escaper, raw, collation, charset string) (string, error) {
	literal, err := qb.quote(e, raw, charset)
	if err != nil {
		return "", err
	}
	return Collate("UNHEX("+literal+")", collation), nil
}

// LikeValue, '%' wildcard'larını match'e göre ekleyip literal üretir.
//
// Örnek:
//
//	qb.LikeValue(conn, "john", LikeBoth, "", "")     → '%john%'
//	qb.LikeValue(conn, "john", LikeForward, "", "")  → 'john%'
//	qb.LikeValue(conn, "john", LikeBackward, "", "") → '%john'
func (qb *QueryBuilder) LikeValue(e Escaper, raw string, match LikeMatch, collation, charset string) (string, error) {
	switch match {
	case LikeForward:
		raw = raw + "%"
	case LikeBackward:
		raw = "%" + raw
	default:
		raw = "%" + raw + "%"
	}
	return qb.Value(e, raw, collation, charset)
}

// ValueList, değerleri escape edip IN için parantezli liste üretir.
//
// Örnek:
//
//	qb.ValueList(conn, "a", "b") → ('a', 'b')
func (qb *QueryBuilder) ValueList(e Escaper, raws ...string) (string, error) {
	literals := make([]string, 0, len(raws))
	for _, raw := range raws {
		literal, err := qb.Value(e, raw, "", "")
		if err != nil {
			return "", err
		}
		literals = append(literals, literal)
	}
	return "(" + strings.Join(literals, ", ") + ")", nil
}

// Collate, collation boş değilse " COLLATE collation" ekler.
func Collate(value, collation string) string {
	collation = strings.TrimSpace(collation)
	if collation == "" {
		return value
	}
	return value + " COLLATE " + collation
}

// quote, escape + tek tırnak + charset introducer adımlarını uygular.
func (qb *QueryBuilder) quote(e Escaper, raw, charset string) (string, error) {
	if e == nil {
		return "", ErrNotConnected
	}

	escaped, err := e.EscapeString(raw)
	if err != nil {
		return "", fmt.Errorf("value escape failed: %w", err)
	}

	literal := "'" + escaped + "'"
	if introducer := qb.grammar.CharsetIntroducer(charset); introducer != "" {
		literal = introducer + " " + literal
	}
	return literal, nil
}
