// -----------------------------------------------------------------------------
// File Cache Driver
// -----------------------------------------------------------------------------
// Statement sonuçlarını disk üzerinde saklayan kalıcı cache.
//
// Memory driver'dan farklı olarak kayıtlar process'ler arasında korunur; bu
// yüzden art arda çalıştırılan CLI komutları aynı sonucu paylaşabilir.
// Her anahtar, xxhash değerinin ilk iki hanesiyle adlandırılan bir alt dizinde
// JSON dosyası olarak tutulur. Süresi dolan dosyalar okuma sırasında
// silinir; Sweep ile toplu temizlik yapılabilir.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// fileEntry, diskte saklanan kayıttır. Value JSON'da base64 olarak yazılır.
type fileEntry struct {
	Key       string `json:"key"`
	Value     []byte `json:"value"`
	ExpiresAt int64  `json:"expires_at"` // Unix nano, 0 = süresiz
}

func (e fileEntry) expired(now time.Time) bool {
	return e.ExpiresAt > 0 && now.UnixNano() > e.ExpiresAt
}

// FileCache, dizin tabanlı cache implementation.
type FileCache struct {
	dir    string
	logger *log.Logger
	mu     sync.RWMutex
}

// NewFileCache, dizini (yoksa) oluşturarak FileCache döndürür.
//
// Örnek:
//
//	fc, err := cache.NewFileCache(filepath.Join(os.TempDir(), "sqlcompose"), logger)
func NewFileCache(dir string, logger *log.Logger) (*FileCache, error) {
	if logger == nil {
		logger = log.Default()
	}
	if dir == "" {
		return nil, errors.New("file cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Printf("❌ Cache dizini oluşturma hatası [%s]: %v", dir, err)
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	logger.Printf("✅ File cache başlatıldı: %s", dir)
	return &FileCache{dir: dir, logger: logger}, nil
}

// Dir, cache dizinini döndürür.
func (f *FileCache) Dir() string {
	return f.dir
}

// path, anahtarın dosya yolunu döndürür.
func (f *FileCache) path(key string) string {
	name := strconv.FormatUint(xxhash.Sum64String(key), 16)
	if len(name) < 2 {
		name = "0" + name
	}
	return filepath.Join(f.dir, name[:2], name+".json")
}

// errCorrupt, dosya okunabildiği halde JSON olarak çözülemediğinde döner.
var errCorrupt = errors.New("corrupt cache file")

func (f *FileCache) read(path string) (fileEntry, error) {
	var entry fileEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	return entry, nil
}

// Get, anahtarın değerini okur. Dosya yoksa, bozuksa veya süresi dolmuşsa
// ErrCacheMiss döner.
func (f *FileCache) Get(_ context.Context, key string) ([]byte, error) {
	path := f.path(key)

	f.mu.RLock()
	entry, err := f.read(path)
	f.mu.RUnlock()

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrCacheMiss
	case errors.Is(err, errCorrupt):
		f.logger.Printf("⚠️  Bozuk cache dosyası siliniyor [%s]", key)
		f.remove(path)
		return nil, ErrCacheMiss
	case err != nil:
		f.logger.Printf("❌ File cache okuma hatası [%s]: %v", key, err)
		return nil, fmt.Errorf("file cache read failed: %w", err)
	case entry.Key != key:
		return nil, ErrCacheMiss
	case entry.expired(time.Now()):
		f.remove(path)
		return nil, ErrCacheMiss
	}
	return entry.Value, nil
}

func (f *FileCache) remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = os.Remove(path)
}

// Set, değeri diske yazar. Yazma geçici dosya + rename ile yapılır.
func (f *FileCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := fileEntry{Key: key, Value: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl).UnixNano()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("json encode failed: %w", err)
	}

	path := f.path(key)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file cache write failed: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("file cache write failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		f.logger.Printf("❌ File cache yazma hatası [%s]: %v", key, err)
		return fmt.Errorf("file cache write failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file cache write failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		f.logger.Printf("❌ File cache yazma hatası [%s]: %v", key, err)
		return fmt.Errorf("file cache write failed: %w", err)
	}
	return nil
}

// Delete, anahtarın dosyasını siler.
func (f *FileCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Printf("❌ File cache silme hatası [%s]: %v", key, err)
		return fmt.Errorf("file cache delete failed: %w", err)
	}
	return nil
}

// Flush, cache dizinini boşaltır.
func (f *FileCache) Flush(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.RemoveAll(f.dir); err != nil {
		f.logger.Printf("❌ Cache temizleme hatası: %v", err)
		return fmt.Errorf("cache flush failed: %w", err)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}

	f.logger.Println("⚠️  File cache tamamen temizlendi")
	return nil
}

// Sweep, süresi dolmuş veya bozuk dosyaları siler ve silinen sayısını döndürür.
func (f *FileCache) Sweep(now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cleaned := 0
	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		entry, err := f.read(path)
		if err != nil || entry.expired(now) {
			if os.Remove(path) == nil {
				cleaned++
			}
		}
		return nil
	})

	if cleaned > 0 {
		f.logger.Printf("🧹 File cache: %d expired dosya silindi", cleaned)
	}
	return cleaned, err
}

// Close, süresi dolmuş kayıtları temizler. Dizin korunur.
func (f *FileCache) Close() error {
	_, err := f.Sweep(time.Now())
	return err
}
