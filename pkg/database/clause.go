package database

import (
	"fmt"
	"strings"
)

// Clause, QueryBuilder içindeki isimli bir slot'u temsil eder.
//
// Her slot yalnızca kendi accumulator metodu tarafından yazılır ve
// finalizer'lar slot'ları statement türüne göre sabit bir sırada birleştirir.
type Clause int

const (
	ClauseSelectMode Clause = iota + 1
	ClauseSelect
	ClauseFrom
	ClauseJoin
	ClauseWhere
	ClauseGroupBy
	ClauseHaving
	ClauseOrderBy
	ClauseLimit
	ClauseLockMode
	ClauseDeleteMode
	ClauseDelete
	ClauseInsertMode
	ClauseReplaceMode
	ClauseUpdateMode
	ClauseUpdate
	ClauseInto
	ClauseColumnNames
	ClauseValues
	ClauseSet
	ClauseSelectStatement
	ClauseOnDuplicate
)

var clauseNames = map[Clause]string{
	ClauseSelectMode:      "select_mode",
	ClauseSelect:          "select",
	ClauseFrom:            "from",
	ClauseJoin:            "join",
	ClauseWhere:           "where",
	ClauseGroupBy:         "group_by",
	ClauseHaving:          "having",
	ClauseOrderBy:         "order_by",
	ClauseLimit:           "limit",
	ClauseLockMode:        "lock_mode",
	ClauseDeleteMode:      "delete_mode",
	ClauseDelete:          "delete",
	ClauseInsertMode:      "insert_mode",
	ClauseReplaceMode:     "replace_mode",
	ClauseUpdateMode:      "update_mode",
	ClauseUpdate:          "update",
	ClauseInto:            "into",
	ClauseColumnNames:     "column_names",
	ClauseValues:          "values",
	ClauseSet:             "set",
	ClauseSelectStatement: "select_statement",
	ClauseOnDuplicate:     "on_duplicate",
}

func (c Clause) String() string {
	if name, ok := clauseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Clause(%d)", int(c))
}

// ParseClause, "order_by" gibi slot isimlerini Clause değerine çevirir.
func ParseClause(name string) (Clause, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for c, clauseName := range clauseNames {
		if clauseName == lower {
			return c, true
		}
	}
	return 0, false
}

// isModeSlot, slot'un keyword listesi tutup tutmadığını söyler.
func (c Clause) isModeSlot() bool {
	switch c {
	case ClauseSelectMode, ClauseLockMode, ClauseDeleteMode,
		ClauseInsertMode, ClauseReplaceMode, ClauseUpdateMode:
		return true
	}
	return false
}
