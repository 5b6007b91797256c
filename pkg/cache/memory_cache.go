// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// Process içi, kalıcı olmayan statement sonuç cache'i.
//
// Test ve uzun ömürlü process'ler için uygundur; CLI çağrıları arasında
// paylaşılmaz (bunun için File veya Redis). Süresi dolan
// kayıtlar okuma sırasında yok sayılır ve arka plandaki temizlik
// goroutine'i tarafından silinir. Close ile goroutine durdurulur.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"log"
	"sync"
	"time"
)

// memoryEntry, memory'de saklanan kayıttır.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero value = süresiz
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache, in-memory cache implementation.
type MemoryCache struct {
	mu     sync.RWMutex
	store  map[string]memoryEntry
	logger *log.Logger

	stop     context.CancelFunc
	wg       sync.WaitGroup
	interval time.Duration
}

// NewMemoryCache, bir dakikalık temizlik aralığı ile MemoryCache oluşturur.
func NewMemoryCache(logger *log.Logger) *MemoryCache {
	return NewMemoryCacheWithInterval(logger, time.Minute)
}

// NewMemoryCacheWithInterval, temizlik aralığını belirterek MemoryCache oluşturur.
func NewMemoryCacheWithInterval(logger *log.Logger, interval time.Duration) *MemoryCache {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		store:    make(map[string]memoryEntry),
		logger:   logger,
		stop:     cancel,
		interval: interval,
	}

	mc.wg.Add(1)
	go mc.collect(ctx)

	logger.Println("✅ Memory cache başlatıldı")
	return mc
}

// collect, süresi dolan kayıtları periyodik olarak siler.
func (m *MemoryCache) collect(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictExpired(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (m *MemoryCache) evictExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, entry := range m.store {
		if entry.expired(now) {
			delete(m.store, key)
			evicted++
		}
	}
	return evicted
}

// Get, anahtarın değerini okur.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.store[key]
	m.mu.RUnlock()

	if !ok || entry.expired(time.Now()) {
		return nil, ErrCacheMiss
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set, değerin kopyasını saklar.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.store[key] = memoryEntry{value: stored, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Delete, anahtarı siler.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.store, key)
	m.mu.Unlock()
	return nil
}

// Flush, tüm kayıtları temizler.
func (m *MemoryCache) Flush(_ context.Context) error {
	m.mu.Lock()
	m.store = make(map[string]memoryEntry)
	m.mu.Unlock()

	m.logger.Println("⚠️  Memory cache temizlendi")
	return nil
}

// Len, saklanan kayıt sayısını döndürür (süresi dolanlar dahil).
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Close, temizlik goroutine'ini durdurur.
func (m *MemoryCache) Close() error {
	m.stop()
	m.wg.Wait()
	return nil
}
