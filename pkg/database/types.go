// -----------------------------------------------------------------------------
// Database Types - Composer İçin Yardımcı Tipler
// -----------------------------------------------------------------------------
// Bu dosya, QueryBuilder'ın clause slot'larında kullandığı küçük değer
// tiplerini içerir: sıralama yönü, WHERE/HAVING koşulları, JOIN tipleri,
// index hint'leri ve statement türleri.
//
// Yön ve JOIN tipi gibi alanlar enum-like string tipleri olarak tutulur;
// geçersiz değerler derleme sırasında sessizce düşürülür.
// -----------------------------------------------------------------------------

package database

import (
	"strings"
)

// OrderDirection, GROUP BY / ORDER BY için sıralama yönünü temsil eder.
//
// Zero value (OrderNone) "yön belirtilmedi" anlamına gelir ve SQL'e hiçbir
// suffix eklenmez. Böylece yön string karşılaştırması ile değil, açıkça
// saklanan bir değer ile takip edilir.
type OrderDirection string

const (
	OrderNone OrderDirection = ""
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// ParseDirection, kullanıcıdan gelen yön string'ini normalize eder.
// Geçersiz değerler için OrderNone döner.
//
// Örnek:
//
//	ParseDirection("desc") → OrderDesc
//	ParseDirection("")     → OrderNone
func ParseDirection(direction string) OrderDirection {
	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case "ASC":
		return OrderAsc
	case "DESC":
		return OrderDesc
	default:
		return OrderNone
	}
}

// OrderClause, bir GROUP BY veya ORDER BY elemanını temsil eder.
//
// Örnek:
//
//	OrderClause{Column: "created_at", Direction: OrderDesc}
//	→ created_at DESC
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// String, elemanı SQL parçası olarak döndürür.
func (o OrderClause) String() string {
	if o.Direction == OrderNone {
		return o.Column
	}
	return o.Column + " " + string(o.Direction)
}

// WhereClause, WHERE veya HAVING içindeki tek bir koşulu tutar.
//
// Alanlar:
//   - Expr: Hazır SQL ifadesi (örn: "`status` = 'active'")
//   - Boolean: Önceki koşulla bağlantı ("AND" veya "OR")
type WhereClause struct {
	Expr    string
	Boolean string
}

// JoinType, JOIN tiplerini temsil eden enum-like yapıdır.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	CrossJoin JoinType = "CROSS"
)

// valid, JOIN tipinin bilinen değerlerden biri olup olmadığını kontrol eder.
func (t JoinType) valid() bool {
	switch t {
	case InnerJoin, LeftJoin, RightJoin, CrossJoin:
		return true
	}
	return false
}

// JoinClause, kolon karşılaştırması ile kurulan bir JOIN'i tarif eder.
//
// Örnek Kullanım:
//
//	JoinClause{
//	    Type: LeftJoin,
//	    Table: "posts",
//	    First: "users.id",
//	    Operator: "=",
//	    Second: "posts.user_id",
//	}
//	→ SQL: LEFT JOIN `posts` ON `users`.`id` = `posts`.`user_id`
type JoinClause struct {
	Type     JoinType
	Table    string
	First    string
	Operator string
	Second   string
}

// LikeMatch, LikeValue'nun '%' wildcard'ını nereye koyacağını belirler.
type LikeMatch int

const (
	// LikeBoth → '%değer%'
	LikeBoth LikeMatch = iota
	// LikeForward → 'değer%' (değer ile başlayanlar)
	LikeForward
	// LikeBackward → '%değer' (değer ile bitenler)
	LikeBackward
)

// IndexHintAction, MySQL index hint eylemidir (USE, IGNORE, FORCE).
type IndexHintAction string

const (
	UseIndex    IndexHintAction = "USE"
	IgnoreIndex IndexHintAction = "IGNORE"
	ForceIndex  IndexHintAction = "FORCE"
)

// IndexHintScope, hint'in hangi işlem için geçerli olduğunu sınırlar.
// Boş scope tüm işlemler için geçerlidir.
type IndexHintScope string

const (
	HintScopeAll     IndexHintScope = ""
	HintScopeJoin    IndexHintScope = "JOIN"
	HintScopeOrderBy IndexHintScope = "ORDER BY"
	HintScopeGroupBy IndexHintScope = "GROUP BY"
)

// IndexHint, FROM clause'undaki tabloya eklenen index ipucudur.
//
// Örnek:
//
//	IndexHint{Action: ForceIndex, Indexes: []string{"idx_created"}}
//	→ FORCE INDEX (`idx_created`)
type IndexHint struct {
	Action  IndexHintAction
	Scope   IndexHintScope
	Indexes []string
}

// StatementKind, finalizer'ın hangi statement'ı üreteceğini belirtir.
type StatementKind int

const (
	KindSelect StatementKind = iota
	KindInsert
	KindReplace
	KindDelete
	KindUpdate
)

var statementKindNames = map[StatementKind]string{
	KindSelect:  "SELECT",
	KindInsert:  "INSERT",
	KindReplace: "REPLACE",
	KindDelete:  "DELETE",
	KindUpdate:  "UPDATE",
}

func (k StatementKind) String() string {
	if name, ok := statementKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseStatementKind, "select", "INSERT" gibi isimleri StatementKind'a çevirir.
func ParseStatementKind(name string) (StatementKind, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for kind, kindName := range statementKindNames {
		if kindName == upper {
			return kind, true
		}
	}
	return 0, false
}
