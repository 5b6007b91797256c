// -----------------------------------------------------------------------------
// Event System - Statement Events
// -----------------------------------------------------------------------------
// Connection, çalıştırdığı her statement için bir event yayınlar. Listener'lar
// bu event'leri loglama, yavaş sorgu tespiti veya metrik toplama için
// kullanabilir.
//
// Event'ler:
//   - statement.executed: Statement başarıyla çalıştı
//   - statement.failed: Sürücü hata döndü
//   - cache.hit / cache.miss: CachedQuery sonucu cache'den okudu / okuyamadı
// -----------------------------------------------------------------------------

package events

import (
	"time"
)

const (
	EventStatementExecuted = "statement.executed"
	EventStatementFailed   = "statement.failed"
	EventCacheHit          = "cache.hit"
	EventCacheMiss         = "cache.miss"

	// Wildcard, tüm event'leri dinleyen listener'lar için kullanılır.
	Wildcard = "*"
)

// Event, tüm event'lerin implement etmesi gereken interface.
type Event interface {
	// Name, event'in benzersiz adını döndürür (örn: "statement.executed").
	Name() string

	// OccurredAt, event'in gerçekleşme zamanını döndürür.
	OccurredAt() time.Time

	// Payload, event ile taşınan veriyi döndürür.
	Payload() interface{}
}

// BaseEvent, Event interface'inin temel implementasyonudur.
type BaseEvent struct {
	name       string
	occurredAt time.Time
	payload    interface{}
}

// NewBaseEvent, yeni bir BaseEvent oluşturur.
//
// Örnek:
//
//	event := events.NewBaseEvent("cache.hit", "query:1f2e")
func NewBaseEvent(name string, payload interface{}) *BaseEvent {
	return &BaseEvent{
		name:       name,
		occurredAt: time.Now(),
		payload:    payload,
	}
}

func (e *BaseEvent) Name() string {
	return e.name
}

func (e *BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e *BaseEvent) Payload() interface{} {
	return e.payload
}

// Statement, statement event'lerinin payload'ıdır.
type Statement struct {
	SQL      string        // Çalıştırılan statement
	Duration time.Duration // Sürücüde geçen süre (cache hit'te 0)
	Rows     int64         // Okunan veya etkilenen satır sayısı
	Err      error         // statement.failed için sürücü hatası
}

// NewStatementEvent, Statement payload'lı bir event oluşturur.
func NewStatementEvent(name string, s Statement) Event {
	return NewBaseEvent(name, s)
}

// StatementOf, event payload'ını Statement olarak döndürür.
func StatementOf(e Event) (Statement, bool) {
	s, ok := e.Payload().(Statement)
	return s, ok
}
