// -----------------------------------------------------------------------------
// Event Dispatcher
// -----------------------------------------------------------------------------
// Dispatcher, event'leri kayıtlı listener'lara ileten merkezi yapıdır.
// Wildcard ("*") ile kayıtlı listener'lar her event'i alır.
//
// Kullanım:
//
//	dispatcher := events.NewDispatcher(logger)
//	dispatcher.Listen(events.Wildcard, events.LogListener(logger))
//	conn.SetDispatcher(dispatcher)
// -----------------------------------------------------------------------------

package events

import (
	"sort"
	"sync"
)

// Dispatcher, thread-safe event yöneticisidir.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	logger    Logger
}

// NewDispatcher, yeni bir Dispatcher oluşturur.
func NewDispatcher(logger Logger) *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
}

// Listen, event'e bir listener kaydeder. Aynı event'e birden fazla
// listener kaydedilebilir; kayıt sırasıyla çağrılırlar.
func (d *Dispatcher) Listen(eventName string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[eventName] = append(d.listeners[eventName], listener)
}

// Subscribe, bir listener'ı birden fazla event'e kaydeder.
func (d *Dispatcher) Subscribe(eventNames []string, listener Listener) {
	for _, eventName := range eventNames {
		d.Listen(eventName, listener)
	}
}

// Dispatch, event'i önce isme kayıtlı, sonra wildcard listener'lara gönderir.
//
// Bir listener hata dönerse loglanır ve diğerleri çalışmaya devam eder.
// Dönen hata son listener hatasıdır.
func (d *Dispatcher) Dispatch(event Event) error {
	d.mu.RLock()
	listeners := make([]Listener, 0, len(d.listeners[event.Name()])+len(d.listeners[Wildcard]))
	listeners = append(listeners, d.listeners[event.Name()]...)
	if event.Name() != Wildcard {
		listeners = append(listeners, d.listeners[Wildcard]...)
	}
	d.mu.RUnlock()

	var lastError error
	for _, listener := range listeners {
		if err := listener.Handle(event); err != nil {
			lastError = err
			if d.logger != nil {
				d.logger.Printf("❌ Listener error for '%s': %v", event.Name(), err)
			}
		}
	}
	return lastError
}

// HasListeners, event'i dinleyen (wildcard dahil) listener olup olmadığını söyler.
func (d *Dispatcher) HasListeners(eventName string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.listeners[eventName]) > 0 || len(d.listeners[Wildcard]) > 0
}

// Events, listener'ı olan event adlarını sıralı döndürür.
func (d *Dispatcher) Events() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.listeners))
	for name, listeners := range d.listeners {
		if len(listeners) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
