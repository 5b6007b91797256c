// -----------------------------------------------------------------------------
// Mode Registry
// -----------------------------------------------------------------------------
// Statement modifier keyword'leri (DISTINCT, SQL_CACHE, LOW_PRIORITY, ...)
// kapalı bir enum olarak tanımlanır. Hangi keyword'ün hangi statement'ta
// geçerli olduğuna Grammar karar verir; QueryBuilder yalnızca grup
// kurallarını uygular:
//
//   - Vocabulary dışındaki keyword sessizce düşürülür
//   - Exclusive gruptan yeni bir üye eskisinin yerini alır
//   - Aynı keyword ikinci kez eklenmez
// -----------------------------------------------------------------------------

package database

import (
	"strings"
)

// Mode, tek bir statement modifier keyword'üdür.
type Mode int

const (
	ModeAll Mode = iota + 1
	ModeDistinct
	ModeDistinctRow
	ModeSQLCache
	ModeSQLNoCache
	ModeHighPriority
	ModeStraightJoin
	ModeSQLSmallResult
	ModeSQLBigResult
	ModeSQLBufferResult
	ModeSQLCalcFoundRows
	ModeLowPriority
	ModeDelayed
	ModeIgnore
	ModeQuick
	ModeForUpdate
	ModeForShare
	ModeLockInShareMode
	ModeNoWait
	ModeSkipLocked
)

var modeKeywords = map[Mode]string{
	ModeAll:              "ALL",
	ModeDistinct:         "DISTINCT",
	ModeDistinctRow:      "DISTINCTROW",
	ModeSQLCache:         "SQL_CACHE",
	ModeSQLNoCache:       "SQL_NO_CACHE",
	ModeHighPriority:     "HIGH_PRIORITY",
	ModeStraightJoin:     "STRAIGHT_JOIN",
	ModeSQLSmallResult:   "SQL_SMALL_RESULT",
	ModeSQLBigResult:     "SQL_BIG_RESULT",
	ModeSQLBufferResult:  "SQL_BUFFER_RESULT",
	ModeSQLCalcFoundRows: "SQL_CALC_FOUND_ROWS",
	ModeLowPriority:      "LOW_PRIORITY",
	ModeDelayed:          "DELAYED",
	ModeIgnore:           "IGNORE",
	ModeQuick:            "QUICK",
	ModeForUpdate:        "FOR UPDATE",
	ModeForShare:         "FOR SHARE",
	ModeLockInShareMode:  "LOCK IN SHARE MODE",
	ModeNoWait:           "NOWAIT",
	ModeSkipLocked:       "SKIP LOCKED",
}

var keywordModes = func() map[string]Mode {
	m := make(map[string]Mode, len(modeKeywords))
	for mode, keyword := range modeKeywords {
		m[keyword] = mode
	}
	return m
}()

// String, keyword'ün SQL'deki yazımını döndürür.
func (m Mode) String() string {
	return modeKeywords[m]
}

// ParseMode, keyword'ü büyük harfe çevirip boşlukları tekilleştirerek
// Mode karşılığını arar.
//
// Örnek:
//
//	ParseMode("sql_cache")      → ModeSQLCache, true
//	ParseMode("for   update")   → ModeForUpdate, true
//	ParseMode("DROP")           → 0, false
func ParseMode(keyword string) (Mode, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(keyword), " "))
	mode, ok := keywordModes[normalized]
	return mode, ok
}

// ModeGroup, bir statement için izin verilen keyword grubudur.
//
// Exclusive gruplarda aynı anda yalnızca bir üye bulunabilir
// (örn: ALL | DISTINCT | DISTINCTROW).
type ModeGroup struct {
	Name      string
	Members   []Mode
	Exclusive bool
}

// Has, keyword'ün bu gruba ait olup olmadığını kontrol eder.
func (g ModeGroup) Has(m Mode) bool {
	for _, member := range g.Members {
		if member == m {
			return true
		}
	}
	return false
}

// Vocabulary, bir mode slot'u için geçerli grupların listesidir.
type Vocabulary []ModeGroup

// Group, keyword'ün ait olduğu grubu bulur.
func (v Vocabulary) Group(m Mode) (ModeGroup, bool) {
	for _, group := range v {
		if group.Has(m) {
			return group, true
		}
	}
	return ModeGroup{}, false
}

// applyMode, keyword'ü grup kurallarına göre listeye uygular.
// Exclusive gruptaki eski üye bulunduğu pozisyonda değiştirilir.
func applyMode(list []Mode, vocabulary Vocabulary, m Mode) []Mode {
	group, ok := vocabulary.Group(m)
	if !ok {
		return list
	}

	for i, existing := range list {
		if existing == m {
			return list
		}
		if group.Exclusive && group.Has(existing) {
			list[i] = m
			return list
		}
	}

	return append(list, m)
}

// renderModes, keyword listesini boşlukla birleştirir.
func renderModes(list []Mode) string {
	keywords := make([]string, 0, len(list))
	for _, m := range list {
		keywords = append(keywords, m.String())
	}
	return strings.Join(keywords, " ")
}
