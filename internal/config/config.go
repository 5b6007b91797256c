// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Bu dosya, composer CLI'ının merkezi konfigürasyon yönetimini sağlar.
// Ayarlar dört katmandan okunur; sonraki katman öncekini ezer:
//
//  1. Varsayılan değerler (confmap)
//  2. YAML dosyası (composer.yaml veya --config ile verilen yol)
//  3. Ortam değişkenleri (COMPOSER_ prefix, iç içe anahtarlar için "__")
//  4. Açıkça verilmiş CLI flag'leri (--dialect, --dsn, --cache-driver, --cache-dir, ...)
//
// Örnek: COMPOSER_DB__MAX_OPEN_CONNS=50 → db.max_open_conns
// -----------------------------------------------------------------------------

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/biyonik/dml-composer/pkg/cache"
	"github.com/biyonik/dml-composer/pkg/database"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName, --config verilmediğinde çalışma dizininde aranan dosyadır.
const ConfigFileName = "composer.yaml"

// EnvPrefix, ortam değişkeni prefix'i.
const EnvPrefix = "COMPOSER_"

// Config, uygulamanın merkezi yapılandırma nesnesidir.
//
// Nested struct yapısı kullanılarak ilgili ayarlar gruplandırılmıştır:
//   - App: Uygulama genel ayarları
//   - DB: Veritabanı bağlantı ve havuz ayarları
//   - Redis: Redis bağlantı ayarları
//   - Cache: Sonuç cache ayarları
//   - Composer: SQL lehçesi
type Config struct {
	App struct {
		Name string `koanf:"name"` // Uygulama adı
		Env  string `koanf:"env"`  // Ortam (development, production, test)
	} `koanf:"app"`

	DB struct {
		DSN                string        `koanf:"dsn"` // Doluysa diğer bağlantı alanları yok sayılır
		Host               string        `koanf:"host"`
		Port               int           `koanf:"port"`
		User               string        `koanf:"user"`
		Password           string        `koanf:"password"`
		Database           string        `koanf:"database"`
		Charset            string        `koanf:"charset"`
		MaxOpenConns       int           `koanf:"max_open_conns"`
		MaxIdleConns       int           `koanf:"max_idle_conns"`
		ConnMaxLifetime    time.Duration `koanf:"conn_max_lifetime"`
		NoBackslashEscapes bool          `koanf:"no_backslash_escapes"`
		SlowThreshold      time.Duration `koanf:"slow_threshold"` // 0 = kapalı
	} `koanf:"db"`

	Redis struct {
		Host     string `koanf:"host"`     // Redis host adresi
		Port     int    `koanf:"port"`     // Redis port
		Password string `koanf:"password"` // Redis şifresi (opsiyonel)
		DB       int    `koanf:"db"`       // Database numarası (0-15)
	} `koanf:"redis"`

	Cache struct {
		Driver string        `koanf:"driver"` // none, memory, file, redis
		Prefix string        `koanf:"prefix"` // Cache key prefix (namespace)
		Dir    string        `koanf:"dir"`    // file driver dizini
		TTL    time.Duration `koanf:"ttl"`    // SELECT sonuçlarının saklanma süresi
	} `koanf:"cache"`

	Composer struct {
		Dialect string `koanf:"dialect"` // generic, mysql, mariadb
	} `koanf:"composer"`
}

// defaults, ilk katmanda yüklenen varsayılan değerlerdir.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                "dml-composer",
		"app.env":                 "development",
		"db.host":                 "127.0.0.1",
		"db.port":                 3306,
		"db.user":                 "root",
		"db.charset":              "utf8mb4",
		"db.max_open_conns":       25,
		"db.max_idle_conns":       25,
		"db.conn_max_lifetime":    5 * time.Minute,
		"db.no_backslash_escapes": false,
		"db.slow_threshold":       time.Duration(0),
		"redis.host":              "127.0.0.1",
		"redis.port":              6379,
		"redis.db":                0,
		"cache.driver":            "none",
		"cache.prefix":            "composer:",
		"cache.dir":               filepath.Join(os.TempDir(), "sqlcompose-cache"),
		"cache.ttl":               time.Minute,
		"composer.dialect":        "mysql",
	}
}

// envKey, COMPOSER_DB__MAX_OPEN_CONNS → db.max_open_conns dönüşümünü yapar.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// flagKeys, CLI flag isimlerini config anahtarlarına eşler.
var flagKeys = map[string]string{
	"dialect":        "composer.dialect",
	"dsn":            "db.dsn",
	"cache-driver":   "cache.driver",
	"cache-dir":      "cache.dir",
	"cache-ttl":      "cache.ttl",
	"env":            "app.env",
	"slow-threshold": "db.slow_threshold",
}

// Load, katmanlı yapılandırmayı okur ve doğrular.
//
// logger nil ise log.Default() kullanılır. path boşsa çalışma dizinindeki composer.yaml (varsa) kullanılır.
// Açıkça verilen dosya bulunamazsa hata döner. flags nil olabilir; yalnızca
// kullanıcının açıkça set ettiği ve flagKeys'te bulunan flag'ler okunur.
//
// Örnek kullanım:
//
//	cfg, err := config.Load("", cmd.Flags(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger.Printf("Dialect: %s", cfg.Composer.Dialect)
func Load(path string, flags *pflag.FlagSet, logger *log.Logger) (*Config, error) {
	if logger == nil {
		logger = log.Default()
	}
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(ConfigFileName); err == nil {
			path = ConfigFileName
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	if path != "" {
		logger.Printf("📄 Config dosyası: %s", path)
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Printf("❌ Config validation hatası: %v", err)
		return nil, err
	}
	for _, warning := range cfg.Warnings() {
		logger.Printf("⚠️  UYARI: %s", warning)
	}

	return &cfg, nil
}

// Validate, config değerlerinin geçerliliğini kontrol eder.
//
// Kontroller:
// - Lehçe kayıtlı bir grammar olmalı
// - Cache driver geçerli olmalı
// - Havuz ve TTL değerleri negatif olamaz
//
// Döndürür:
//   - error: Validation hatası (varsa)
func (c *Config) Validate() error {
	if _, err := database.GrammarFor(c.Composer.Dialect); err != nil {
		return fmt.Errorf("geçersiz COMPOSER_COMPOSER__DIALECT: %w", err)
	}

	validDrivers := map[string]bool{
		"none":   true,
		"memory": true,
		"file":   true,
		"redis":  true,
	}
	if !validDrivers[c.Cache.Driver] {
		return fmt.Errorf("geçersiz cache driver: %s (none, memory, file veya redis olmalı)", c.Cache.Driver)
	}
	if c.Cache.Driver == "file" && strings.TrimSpace(c.Cache.Dir) == "" {
		return fmt.Errorf("file cache için cache.dir zorunludur")
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl negatif olamaz: %s", c.Cache.TTL)
	}
	if c.DB.SlowThreshold < 0 {
		return fmt.Errorf("slow threshold negatif olamaz: %s", c.DB.SlowThreshold)
	}
	if c.DB.MaxOpenConns < 0 || c.DB.MaxIdleConns < 0 {
		return fmt.Errorf("db havuz değerleri negatif olamaz")
	}

	return nil
}

// Warnings, geçerli fakat önerilmeyen ayarları listeler.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Cache.Driver == "memory" {
		warnings = append(warnings, "memory cache her komut sonunda silinir; CLI çağrıları arasında sonuç paylaşmak için file veya redis kullanın")
	}
	if c.IsProduction() && c.DB.DSN == "" && c.DB.Password == "" {
		warnings = append(warnings, "production ortamında veritabanı şifresi boş")
	}
	return warnings
}

// Connection, DB bölümünü database.ConnectionConfig'e çevirir.
func (c *Config) Connection() database.ConnectionConfig {
	return database.ConnectionConfig{
		DSN:                c.DB.DSN,
		Host:               c.DB.Host,
		Port:               c.DB.Port,
		User:               c.DB.User,
		Password:           c.DB.Password,
		Database:           c.DB.Database,
		Charset:            c.DB.Charset,
		MaxOpenConns:       c.DB.MaxOpenConns,
		MaxIdleConns:       c.DB.MaxIdleConns,
		ConnMaxLifetime:    c.DB.ConnMaxLifetime,
		NoBackslashEscapes: c.DB.NoBackslashEscapes,
	}
}

// CacheOptions, Cache ve Redis bölümlerini cache.Options'a çevirir.
func (c *Config) CacheOptions() cache.Options {
	redisCfg := cache.DefaultRedisConfig()
	redisCfg.Host = c.Redis.Host
	redisCfg.Port = c.Redis.Port
	redisCfg.Password = c.Redis.Password
	redisCfg.DB = c.Redis.DB

	return cache.Options{
		Driver: c.Cache.Driver,
		Prefix: c.Cache.Prefix,
		Dir:    c.Cache.Dir,
		Redis:  redisCfg,
	}
}

// CacheEnabled, sonuç cache'inin açık olup olmadığını söyler.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Driver != "none"
}

// IsProduction, uygulamanın production ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment, uygulamanın development ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsTest, uygulamanın test ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}
