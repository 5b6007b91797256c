// -----------------------------------------------------------------------------
// Event Listeners
// -----------------------------------------------------------------------------
// Listener, bir event gerçekleştiğinde çalışacak kod bloğudur.
//
// Örnek:
//
//	dispatcher.Listen(events.EventStatementExecuted, events.ListenerFunc(func(e events.Event) error {
//	    s, _ := events.StatementOf(e)
//	    log.Printf("%s (%s)", s.SQL, s.Duration)
//	    return nil
//	}))
// -----------------------------------------------------------------------------

package events

import (
	"time"
)

// Listener, event'leri dinleyen ve işleyen interface.
//
// Handle error dönerse dispatcher hatayı loglar ancak diğer listener'ların
// çalışmasını engellemez.
type Listener interface {
	Handle(event Event) error
}

// ListenerFunc, fonksiyonları Listener interface'ine çevirir.
type ListenerFunc func(Event) error

// Handle, ListenerFunc'ı Listener interface'ine uyumlu hale getirir.
func (f ListenerFunc) Handle(event Event) error {
	return f(event)
}

// Logger, log interface'i. *log.Logger bu interface'i sağlar.
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// ConditionalListener, sadece koşul sağlandığında çalışan listener.
type ConditionalListener struct {
	listener  Listener
	condition func(Event) bool
}

// NewConditionalListener, yeni bir ConditionalListener oluşturur.
func NewConditionalListener(listener Listener, condition func(Event) bool) *ConditionalListener {
	return &ConditionalListener{
		listener:  listener,
		condition: condition,
	}
}

// Handle, koşul sağlanıyorsa listener'ı çalıştırır.
func (c *ConditionalListener) Handle(event Event) error {
	if c.condition(event) {
		return c.listener.Handle(event)
	}
	return nil
}

// SlowStatementListener, süresi threshold'u aşan statement'larda çalışır.
//
// Örnek:
//
//	dispatcher.Listen(events.EventStatementExecuted,
//	    events.SlowStatementListener(200*time.Millisecond, logSlow))
func SlowStatementListener(threshold time.Duration, listener Listener) *ConditionalListener {
	return NewConditionalListener(listener, func(e Event) bool {
		s, ok := StatementOf(e)
		return ok && s.Duration >= threshold
	})
}

// LogListener, statement event'lerini logger'a yazar.
func LogListener(logger Logger) Listener {
	return ListenerFunc(func(e Event) error {
		s, ok := StatementOf(e)
		if !ok {
			logger.Printf("📢 %s: %v", e.Name(), e.Payload())
			return nil
		}
		if s.Err != nil {
			logger.Printf("❌ %s [%s]: %s: %v", e.Name(), s.Duration, s.SQL, s.Err)
			return nil
		}
		logger.Printf("📢 %s [%s, %d rows]: %s", e.Name(), s.Duration, s.Rows, s.SQL)
		return nil
	})
}
