// -----------------------------------------------------------------------------
// Event Dispatcher Tests
// -----------------------------------------------------------------------------
// Testler:
// - İsimli ve wildcard listener'lara dağıtım
// - Listener hatasının diğer listener'ları engellememesi
// - Yavaş statement filtresi
// - Concurrent dispatch
// -----------------------------------------------------------------------------

package events

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockLogger, test için basit logger.
type MockLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *MockLogger) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprintf(format, v...))
	m.mu.Unlock()
}

func (m *MockLogger) Println(v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprint(v...))
	m.mu.Unlock()
}

func (m *MockLogger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

func counting(counter *atomic.Int32) Listener {
	return ListenerFunc(func(Event) error {
		counter.Add(1)
		return nil
	})
}

func TestDispatcher_BasicDispatch(t *testing.T) {
	d := NewDispatcher(&MockLogger{})

	var executed, failed atomic.Int32
	d.Listen(EventStatementExecuted, counting(&executed))
	d.Listen(EventStatementFailed, counting(&failed))

	if err := d.Dispatch(NewStatementEvent(EventStatementExecuted, Statement{SQL: "SELECT 1"})); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if executed.Load() != 1 {
		t.Errorf("Expected 1 executed call, got %d", executed.Load())
	}
	if failed.Load() != 0 {
		t.Errorf("Expected 0 failed calls, got %d", failed.Load())
	}
}

func TestDispatcher_WildcardListener(t *testing.T) {
	d := NewDispatcher(&MockLogger{})

	var all atomic.Int32
	d.Listen(Wildcard, counting(&all))

	_ = d.Dispatch(NewBaseEvent(EventCacheHit, "query:1"))
	_ = d.Dispatch(NewBaseEvent(EventCacheMiss, "query:2"))
	_ = d.Dispatch(NewStatementEvent(EventStatementExecuted, Statement{}))

	if all.Load() != 3 {
		t.Errorf("Expected wildcard listener to see 3 events, got %d", all.Load())
	}
	if !d.HasListeners(EventStatementFailed) {
		t.Error("Wildcard listener should count for every event")
	}
}

func TestDispatcher_ListenerError(t *testing.T) {
	logger := &MockLogger{}
	d := NewDispatcher(logger)

	boom := errors.New("boom")
	var after atomic.Int32
	d.Listen(EventStatementExecuted, ListenerFunc(func(Event) error { return boom }))
	d.Listen(EventStatementExecuted, counting(&after))

	err := d.Dispatch(NewStatementEvent(EventStatementExecuted, Statement{}))
	if !errors.Is(err, boom) {
		t.Errorf("Expected listener error to be returned, got %v", err)
	}
	if after.Load() != 1 {
		t.Error("Listener after a failing one must still run")
	}
	if logger.Len() != 1 {
		t.Errorf("Expected 1 log line, got %d", logger.Len())
	}
}

func TestDispatcher_SubscribeAndEvents(t *testing.T) {
	d := NewDispatcher(nil)

	if len(d.Events()) != 0 {
		t.Errorf("Expected no events, got %v", d.Events())
	}

	var n atomic.Int32
	d.Subscribe([]string{EventCacheMiss, EventCacheHit}, counting(&n))

	if got := d.Events(); len(got) != 2 || got[0] != EventCacheHit || got[1] != EventCacheMiss {
		t.Errorf("Unexpected events: %v", got)
	}
	if !d.HasListeners(EventCacheHit) {
		t.Error("Expected listeners for cache.hit")
	}
	if d.HasListeners(EventStatementExecuted) {
		t.Error("Expected no listeners for statement.executed")
	}

	_ = d.Dispatch(NewBaseEvent(EventCacheHit, "query:1"))
	_ = d.Dispatch(NewBaseEvent(EventCacheMiss, "query:1"))
	if n.Load() != 2 {
		t.Errorf("Expected 2 deliveries, got %d", n.Load())
	}
}

func TestSlowStatementListener(t *testing.T) {
	var slow atomic.Int32
	listener := SlowStatementListener(100*time.Millisecond, counting(&slow))

	_ = listener.Handle(NewStatementEvent(EventStatementExecuted, Statement{Duration: 10 * time.Millisecond}))
	_ = listener.Handle(NewStatementEvent(EventStatementExecuted, Statement{Duration: 150 * time.Millisecond}))
	_ = listener.Handle(NewBaseEvent(EventCacheHit, "query:1"))

	if slow.Load() != 1 {
		t.Errorf("Expected only the slow statement to pass, got %d", slow.Load())
	}
}

func TestLogListener(t *testing.T) {
	logger := &MockLogger{}
	listener := LogListener(logger)

	_ = listener.Handle(NewStatementEvent(EventStatementExecuted, Statement{SQL: "SELECT 1", Rows: 1}))
	_ = listener.Handle(NewStatementEvent(EventStatementFailed, Statement{SQL: "SELECT x", Err: errors.New("unknown column")}))
	_ = listener.Handle(NewBaseEvent(EventCacheMiss, "query:1"))

	if logger.Len() != 3 {
		t.Errorf("Expected 3 log lines, got %d", logger.Len())
	}
}

func TestDispatcher_ConcurrentDispatch(t *testing.T) {
	d := NewDispatcher(nil)

	var n atomic.Int32
	d.Listen(EventStatementExecuted, counting(&n))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Dispatch(NewStatementEvent(EventStatementExecuted, Statement{}))
		}()
	}
	wg.Wait()

	if n.Load() != 50 {
		t.Errorf("Expected 50 calls, got %d", n.Load())
	}
}
