package database

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Grammar Interface
// -----------------------------------------------------------------------------
// Grammar, SQL lehçesine özgü kelime dağarcığını ve quoting kurallarını
// tanımlar. Statement yapısı (slot sırası, payload önceliği) QueryBuilder'da
// sabittir; Grammar yalnızca lehçeye özgü parçaları sağlar.
//
// Implementasyonlar:
// - BaseGrammar: Generic SQL, çift tırnak, boş vocabulary
// - MySQLGrammar: MySQL/MariaDB için
// -----------------------------------------------------------------------------

// Grammar, SQL lehçesine özgü parçaları üretir.
type Grammar interface {
	// Name, grammar'ın kimliğini döndürür (generic | mysql).
	Name() string

	// QuoteIdentifier, tek bir identifier segmentini quote karakteri ile sarar.
	// MySQL: backtick (`table`), generic: çift tırnak ("table")
	QuoteIdentifier(segment string) string

	// Vocabulary, verilen mode slot'u için geçerli keyword gruplarını döndürür.
	// Generic grammar hiçbir keyword tanımaz.
	Vocabulary(slot Clause) Vocabulary

	// CompileIndexHint, FROM'a eklenecek index hint'ini üretir.
	// Desteklenmeyen veya geçersiz hint için false döner.
	CompileIndexHint(hint IndexHint) (string, bool)

	// CharsetIntroducer, literal önüne eklenecek charset ifadesini döndürür.
	CharsetIntroducer(charset string) string

	// CompileUpsert, INSERT sonrasına eklenecek duplicate-key güncellemesini
	// üretir. Desteklenmiyorsa false döner.
	CompileUpsert(assignments []string) (string, bool)
}

// BaseGrammar, lehçeden bağımsız yapıyı tanımlar.
type BaseGrammar struct {
	quote string
}

// NewBaseGrammar, çift tırnak kullanan generic grammar oluşturur.
func NewBaseGrammar() *BaseGrammar {
	return &BaseGrammar{quote: `"`}
}

func (g *BaseGrammar) Name() string {
	return "generic"
}

// QuoteIdentifier, segmenti sarar ve içindeki quote karakterini ikiler.
func (g *BaseGrammar) QuoteIdentifier(segment string) string {
	q := g.quote
	if q == "" {
		q = `"`
	}
	return q + strings.ReplaceAll(segment, q, q+q) + q
}

func (g *BaseGrammar) Vocabulary(Clause) Vocabulary {
	return nil
}

func (g *BaseGrammar) CompileIndexHint(IndexHint) (string, bool) {
	return "", false
}

func (g *BaseGrammar) CharsetIntroducer(charset string) string {
	return charset
}

func (g *BaseGrammar) CompileUpsert([]string) (string, bool) {
	return "", false
}

// -----------------------------------------------------------------------------
// Grammar Registry
// -----------------------------------------------------------------------------

var (
	grammarsMu sync.RWMutex
	grammars   = map[string]func() Grammar{
		"generic": func() Grammar { return NewBaseGrammar() },
		"mysql":   func() Grammar { return NewMySQLGrammar() },
		"mariadb": func() Grammar { return NewMySQLGrammar() },
	}
)

// RegisterGrammar, isim ile yeni bir grammar fabrikası kaydeder.
func RegisterGrammar(name string, factory func() Grammar) {
	grammarsMu.Lock()
	defer grammarsMu.Unlock()
	grammars[strings.ToLower(name)] = factory
}

// GrammarFor, config'deki dialect adından grammar üretir.
//
// Örnek:
//
//	g, err := GrammarFor("mysql")
func GrammarFor(name string) (Grammar, error) {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()

	factory, ok := grammars[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown sql dialect: %q (available: %s)", name, strings.Join(grammarNames(), ", "))
	}
	return factory(), nil
}

// GrammarNames, kayıtlı grammar isimlerini sıralı döndürür.
func GrammarNames() []string {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()
	return grammarNames()
}

func grammarNames() []string {
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
