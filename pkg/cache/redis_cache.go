// -----------------------------------------------------------------------------
// Redis Cache Driver
// -----------------------------------------------------------------------------
// Birden fazla process'in aynı statement sonuçlarını paylaşması için
// Redis tabanlı driver.
//
// Özellikler:
// - Key prefix (namespace)
// - TTL support
// - Flush yalnızca prefix altındaki anahtarları siler (SCAN + DEL)
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig, Redis bağlantı yapılandırması.
type RedisConfig struct {
	Host         string        // Redis sunucu adresi
	Port         int           // Redis port
	Password     string        // Redis şifresi (opsiyonel)
	DB           int           // Database numarası (0-15)
	PoolSize     int           // Connection pool boyutu
	DialTimeout  time.Duration // Bağlantı timeout süresi
	ReadTimeout  time.Duration // Okuma timeout süresi
	WriteTimeout time.Duration // Yazma timeout süresi
}

// DefaultRedisConfig, yerel geliştirme için varsayılan yapılandırma.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:         "127.0.0.1",
		Port:         6379,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// options, RedisConfig'i go-redis seçeneklerine çevirir.
func (c RedisConfig) options() *redis.Options {
	defaults := DefaultRedisConfig()
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

// DialRedis, Redis client'ı oluşturur ve Ping ile bağlantıyı doğrular.
//
// Güvenlik Notu:
// - Redis şifresi environment variable'dan okunmalı
func DialRedis(cfg RedisConfig, logger *log.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = log.Default()
	}

	opts := cfg.options()
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("❌ Redis bağlantı hatası: %v", err)
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Printf("✅ Redis bağlantısı başarılı: %s (DB: %d)", opts.Addr, opts.DB)
	return client, nil
}

// RedisCache, Redis-based cache implementation.
type RedisCache struct {
	client *redis.Client
	logger *log.Logger
	prefix string
}

// NewRedisCache, mevcut bir client üzerinde RedisCache oluşturur.
//
// Örnek:
//
//	c := NewRedisCache(client, logger, "composer:")
//	// Gerçek key: "composer:query:1f2e..."
func NewRedisCache(client *redis.Client, logger *log.Logger, prefix string) *RedisCache {
	if logger == nil {
		logger = log.Default()
	}
	return &RedisCache{client: client, logger: logger, prefix: prefix}
}

// Key, anahtara prefix ekler.
func (r *RedisCache) Key(key string) string {
	return r.prefix + key
}

// Get, anahtarın değerini okur.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		r.logger.Printf("❌ Redis Get hatası [%s]: %v", r.Key(key), err)
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

// Set, değeri yazar.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.Key(key), value, ttl).Err(); err != nil {
		r.logger.Printf("❌ Redis Set hatası [%s]: %v", r.Key(key), err)
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete, anahtarı siler.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.Key(key)).Err(); err != nil {
		r.logger.Printf("❌ Redis Delete hatası [%s]: %v", r.Key(key), err)
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Flush, prefix altındaki tüm anahtarları siler.
// Prefix boşsa mevcut database tamamen temizlenir.
func (r *RedisCache) Flush(ctx context.Context) error {
	if r.prefix == "" {
		if err := r.client.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("redis flush failed: %w", err)
		}
		r.logger.Println("⚠️  Redis database temizlendi (FlushDB)")
		return nil
	}

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis flush failed: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}

	r.logger.Printf("⚠️  Redis cache temizlendi: %d anahtar (%s*)", deleted, r.prefix)
	return nil
}

// Stats, connection pool istatistiklerini döndürür.
func (r *RedisCache) Stats() map[string]interface{} {
	stats := r.client.PoolStats()
	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}
}

// Close, Redis bağlantısını kapatır.
func (r *RedisCache) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Printf("❌ Redis kapatma hatası: %v", err)
		return err
	}
	r.logger.Println("✅ Redis bağlantısı kapatıldı")
	return nil
}
