package database

import (
	"strings"
)

// -----------------------------------------------------------------------------
// MySQL Grammar
// -----------------------------------------------------------------------------
// MySQL/MariaDB lehçesi:
// - Identifier'lar backtick ile sarılır
// - SELECT / DELETE / INSERT / REPLACE / UPDATE / kilit keyword'leri
// - USE / IGNORE / FORCE INDEX hint'leri
// - _charset introducer'ları ve ON DUPLICATE KEY UPDATE
// -----------------------------------------------------------------------------

type MySQLGrammar struct {
	BaseGrammar
}

func NewMySQLGrammar() *MySQLGrammar {
	return &MySQLGrammar{BaseGrammar: BaseGrammar{quote: "`"}}
}

// allowedOperators, WhereOp ile kullanılabilecek operatörlerin whitelist'idir.
var allowedOperators = map[string]bool{
	"=":           true,
	"!=":          true,
	"<>":          true,
	"<=>":         true,
	"<":           true,
	">":           true,
	"<=":          true,
	">=":          true,
	"LIKE":        true,
	"NOT LIKE":    true,
	"IN":          true,
	"NOT IN":      true,
	"BETWEEN":     true,
	"NOT BETWEEN": true,
	"IS":          true,
	"IS NOT":      true,
	"REGEXP":      true,
}

var mysqlVocabularies = map[Clause]Vocabulary{
	ClauseSelectMode: {
		{Name: "duplicate", Exclusive: true, Members: []Mode{ModeAll, ModeDistinct, ModeDistinctRow}},
		{Name: "cache", Exclusive: true, Members: []Mode{ModeSQLCache, ModeSQLNoCache}},
		{Name: "standard", Members: []Mode{
			ModeHighPriority, ModeStraightJoin, ModeSQLSmallResult,
			ModeSQLBigResult, ModeSQLBufferResult, ModeSQLCalcFoundRows,
		}},
	},
	ClauseDeleteMode: {
		{Name: "standard", Members: []Mode{ModeLowPriority, ModeQuick, ModeIgnore}},
	},
	ClauseInsertMode: {
		{Name: "priority", Exclusive: true, Members: []Mode{ModeLowPriority, ModeDelayed, ModeHighPriority}},
		{Name: "standard", Members: []Mode{ModeIgnore}},
	},
	ClauseReplaceMode: {
		{Name: "priority", Exclusive: true, Members: []Mode{ModeLowPriority, ModeDelayed}},
	},
	ClauseUpdateMode: {
		{Name: "standard", Members: []Mode{ModeLowPriority, ModeIgnore}},
	},
	ClauseLockMode: {
		{Name: "lock", Exclusive: true, Members: []Mode{ModeForUpdate, ModeForShare, ModeLockInShareMode}},
		{Name: "standard", Members: []Mode{ModeNoWait, ModeSkipLocked}},
	},
}

func (g *MySQLGrammar) Name() string {
	return "mysql"
}

// Vocabulary, MySQL'in her statement için kabul ettiği keyword gruplarıdır.
func (g *MySQLGrammar) Vocabulary(slot Clause) Vocabulary {
	return mysqlVocabularies[slot]
}

// CompileIndexHint, MySQL index hint sözdizimini üretir.
//
// Örnek:
//
//	IndexHint{Action: UseIndex, Scope: HintScopeOrderBy, Indexes: []string{"a", "b"}}
//	→ USE INDEX FOR ORDER BY (`a`, `b`)
//
// IGNORE ve FORCE en az bir index ister; USE boş liste ile de geçerlidir.
func (g *MySQLGrammar) CompileIndexHint(hint IndexHint) (string, bool) {
	action := IndexHintAction(strings.ToUpper(strings.TrimSpace(string(hint.Action))))
	switch action {
	case UseIndex:
	case IgnoreIndex, ForceIndex:
		if len(hint.Indexes) == 0 {
			return "", false
		}
	default:
		return "", false
	}

	scope := IndexHintScope(strings.ToUpper(strings.Join(strings.Fields(string(hint.Scope)), " ")))
	switch scope {
	case HintScopeAll, HintScopeJoin, HintScopeOrderBy, HintScopeGroupBy:
	default:
		return "", false
	}

	indexes := make([]string, 0, len(hint.Indexes))
	for _, index := range hint.Indexes {
		index = strings.TrimSpace(index)
		if index == "" {
			continue
		}
		if strings.EqualFold(index, "PRIMARY") {
			indexes = append(indexes, "PRIMARY")
			continue
		}
		indexes = append(indexes, g.QuoteIdentifier(index))
	}

	sql := string(action) + " INDEX"
	if scope != HintScopeAll {
		sql += " FOR " + string(scope)
	}
	return sql + " (" + strings.Join(indexes, ", ") + ")", true
}

// CharsetIntroducer, MySQL introducer'ını (_utf8mb4) üretir.
func (g *MySQLGrammar) CharsetIntroducer(charset string) string {
	charset = strings.TrimSpace(charset)
	if charset == "" || strings.HasPrefix(charset, "_") {
		return charset
	}
	return "_" + charset
}

// CompileUpsert, ON DUPLICATE KEY UPDATE ifadesini üretir.
func (g *MySQLGrammar) CompileUpsert(assignments []string) (string, bool) {
	if len(assignments) == 0 {
		return "", false
	}
	return "ON DUPLICATE KEY UPDATE " + strings.Join(assignments, ", "), true
}
