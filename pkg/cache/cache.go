// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Statement sonuç cache'i için driver sözleşmesi.
//
// Cache, çalıştırılmış SELECT statement'larının serialize edilmiş sonucunu
// statement metninden türetilen anahtar ile saklar. Değerler []byte olarak
// tutulur; encode/decode çağıranın sorumluluğundadır.
//
// Driver'lar: Memory, File, Redis
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrCacheMiss, anahtar bulunamadığında veya süresi dolduğunda döner.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache, tüm cache driver'ların implement etmesi gereken interface.
//
// Örnek kullanım:
//
//	var c Cache = NewMemoryCache(logger)
//	_ = c.Set(ctx, "query:1f2e", payload, time.Minute)
type Cache interface {
	// Get, anahtarın değerini okur. Bulunamazsa ErrCacheMiss döner.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set, değeri yazar. ttl = 0 süresiz saklar.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, anahtarı siler. Anahtar yoksa hata vermez.
	Delete(ctx context.Context, key string) error

	// Flush, bu cache'e ait tüm anahtarları temizler.
	Flush(ctx context.Context) error

	// Close, driver'ın arka plan kaynaklarını serbest bırakır.
	Close() error
}

// Remember, cache'den okur; bulamazsa callback'i çalıştırıp sonucu cache'ler.
//
// Cache okuma/yazma hataları callback sonucunu engellemez, yalnızca loglanır.
//
// Örnek:
//
//	payload, err := cache.Remember(ctx, c, logger, key, time.Minute, func() ([]byte, error) {
//	    return json.Marshal(result)
//	})
func Remember(ctx context.Context, c Cache, logger *log.Logger, key string, ttl time.Duration, callback func() ([]byte, error)) ([]byte, error) {
	value, err := c.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) && logger != nil {
		logger.Printf("⚠️  Cache okuma hatası [%s]: %v", key, err)
	}

	value, err = callback()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil && logger != nil {
		logger.Printf("⚠️  Remember cache yazma hatası [%s]: %v", key, err)
	}
	return value, nil
}

// Options, Open için driver seçimini ve bağlantı bilgisini taşır.
type Options struct {
	Driver string // memory | file | redis
	Prefix string // Key prefix (namespace)
	Dir    string // file driver dizini
	Redis  RedisConfig
}

// Open, driver adına göre cache oluşturur.
//
// Döndürür:
//   - Cache: Driver instance
//   - error: Geçersiz driver veya Redis bağlantı hatası
func Open(opts Options, logger *log.Logger) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "memory", "":
		return NewMemoryCache(logger), nil
	case "file":
		fc, err := NewFileCache(opts.Dir, logger)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case "redis":
		client, err := DialRedis(opts.Redis, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisCache(client, logger, opts.Prefix), nil
	default:
		return nil, fmt.Errorf("geçersiz cache driver: %s (memory, file veya redis olmalı)", opts.Driver)
	}
}
