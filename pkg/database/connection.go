// -----------------------------------------------------------------------------
// Database Package
// -----------------------------------------------------------------------------
// Bu dosya, oluşturulan statement'ların çalıştırılacağı bağlantı katmanını
// içerir. Composer'ın kendisi hiçbir zaman SQL çalıştırmaz; çalıştırma ve
// literal escape işlemleri burada, Connection üzerinden yapılır.
//
// Connect, DSN veya parça parça verilen ayarlarla MySQL havuzunu açar,
// bağlantı havuzunu yapılandırır ve Ping ile ulaşılabilirliği doğrular.
// Connection ise havuzu (veya bir transaction'ı) sarar, Escaper olarak
// builder'lara literal üretme yeteneği sağlar ve opsiyonel sonuç cache'i
// ile SELECT sonuçlarını saklar.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/biyonik/dml-composer/pkg/cache"
	"github.com/biyonik/dml-composer/pkg/events"
	"github.com/cespare/xxhash/v2"
	"github.com/go-sql-driver/mysql"
)

// ErrEmptyStatement, finalizer boş string ürettiğinde (eksik statement) döner.
var ErrEmptyStatement = errors.New("empty statement: required clause missing")

// ConnectionConfig, MySQL bağlantı havuzu ayarları.
//
// DSN doluysa Host/Port/User/Password/Database alanları yok sayılır.
type ConnectionConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Charset  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// NoBackslashEscapes, sunucu NO_BACKSLASH_ESCAPES sql_mode ile çalışıyorsa true olmalıdır.
	NoBackslashEscapes bool
}

// DefaultConnectionConfig, yerel geliştirme için varsayılan ayarlar.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Host:            "127.0.0.1",
		Port:            3306,
		User:            "root",
		Charset:         "utf8mb4",
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// FormatDSN, ayarlardan go-sql-driver formatında DSN üretir.
// DSN verilmişse parse edilerek doğrulanır.
func (c ConnectionConfig) FormatDSN() (string, error) {
	if c.DSN != "" {
		if _, err := mysql.ParseDSN(c.DSN); err != nil {
			return "", fmt.Errorf("invalid dsn: %w", err)
		}
		return c.DSN, nil
	}

	if c.Host == "" {
		return "", errors.New("database host is required")
	}

	port := c.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	cfg.DBName = c.Database
	cfg.ParseTime = true
	if c.Charset != "" {
		cfg.Params = map[string]string{"charset": c.Charset}
	}
	return cfg.FormatDSN(), nil
}

// Connect, verilen ayarlarla MySQL veritabanına bağlanır ve *sql.DB nesnesini döndürür.
// Bağlantı sırasında şu adımlar gerçekleştirilir:
//  1. DSN üretilir veya doğrulanır.
//  2. sql.Open ile sürücü ve DSN kullanılarak bağlantı nesnesi oluşturulur.
//  3. Bağlantı havuzu için max open, idle ve lifetime değerleri belirlenir.
//  4. PingContext ile veritabanının ulaşılabilirliği kontrol edilir.
//  5. Hata varsa connection kapatılır ve error döner.
func Connect(ctx context.Context, cfg ConnectionConfig, logger *log.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = log.Default()
	}

	dsn, err := cfg.FormatDSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	defaults := DefaultConnectionConfig()
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = defaults.MaxOpenConns
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = defaults.MaxIdleConns
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Println("Veritabanına bağlanılıyor...")
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Printf("❌ Veritabanı bağlantı hatası: %v", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Println("✅ Veritabanı bağlantısı başarılı!")
	return db, nil
}

// Connection, statement çalıştırma ve literal escape yeteneğini bir arada sunar.
//
// Connection Escaper interface'ini implement eder; builder'ın Value,
// HexValue, LikeValue ve ValueList metodlarına doğrudan verilebilir.
// Close çağrıldıktan sonra tüm işlemler ErrNotConnected döner.
type Connection struct {
	executor QueryExecutor
	db       *sql.DB
	grammar  Grammar
	logger   *log.Logger

	cache              cache.Cache
	dispatcher         *events.Dispatcher
	noBackslashEscapes bool
	closed             atomic.Bool
}

// NewConnection, bir executor (*sql.DB veya *sql.Tx) üzerinde Connection oluşturur.
// grammar nil ise MySQLGrammar kullanılır.
//
// Örnek:
//
//	db, _ := database.Connect(ctx, cfg, logger)
//	conn := database.NewConnection(db, database.NewMySQLGrammar(), logger)
//	qb := conn.NewBuilder()
//	lit, _ := qb.Value(conn, "O'Reilly", "", "")
func NewConnection(executor QueryExecutor, grammar Grammar, logger *log.Logger) *Connection {
	if grammar == nil {
		grammar = NewMySQLGrammar()
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &Connection{executor: executor, grammar: grammar, logger: logger}
	if db, ok := executor.(*sql.DB); ok {
		c.db = db
	}
	return c
}

// SetResultCache, CachedQuery için cache driver'ını bağlar.
func (c *Connection) SetResultCache(rc cache.Cache) *Connection {
	c.cache = rc
	return c
}

// SetDispatcher, statement ve cache event'lerinin yayınlanacağı dispatcher'ı bağlar.
func (c *Connection) SetDispatcher(d *events.Dispatcher) *Connection {
	c.dispatcher = d
	return c
}

func (c *Connection) dispatch(name string, s events.Statement) {
	if c.dispatcher == nil || !c.dispatcher.HasListeners(name) {
		return
	}
	_ = c.dispatcher.Dispatch(events.NewStatementEvent(name, s))
}

// SetNoBackslashEscapes, escape algoritmasını NO_BACKSLASH_ESCAPES moduna alır.
func (c *Connection) SetNoBackslashEscapes(enabled bool) *Connection {
	c.noBackslashEscapes = enabled
	return c
}

// Grammar, bağlantının lehçesini döndürür.
func (c *Connection) Grammar() Grammar {
	return c.grammar
}

// NewBuilder, bağlantının grammar'ı ile yeni bir QueryBuilder oluşturur.
func (c *Connection) NewBuilder() *QueryBuilder {
	return NewBuilder(c.grammar)
}

func (c *Connection) connected() bool {
	return c != nil && c.executor != nil && !c.closed.Load()
}

// EscapeString, ham değeri MySQL string literal'i içinde kullanılabilir hale getirir.
// Dönen değer tırnak içermez. Bağlantı kapalıysa ErrNotConnected döner.
//
// Varsayılan modda \0, \n, \r, \, ', " ve \x1a ters bölü ile kaçırılır.
// NO_BACKSLASH_ESCAPES modunda yalnızca tek tırnak ikilenir.
func (c *Connection) EscapeString(raw string) (string, error) {
	if !c.connected() {
		return "", ErrNotConnected
	}
	if c.noBackslashEscapes {
		return escapeQuotes(raw), nil
	}
	return escapeBackslash(raw), nil
}

func escapeBackslash(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 8)

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch ch {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1a':
			b.WriteString(`\Z`)
		case '\\', '\'', '"':
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func escapeQuotes(raw string) string {
	return strings.ReplaceAll(raw, "'", "''")
}

// Query, SELECT statement'ını çalıştırır ve sonucu belleğe okur.
//
// Döndürür:
//   - *Result: Kolon adları ve satırlar
//   - error: ErrEmptyStatement, ErrNotConnected veya sürücü hatası
func (c *Connection) Query(ctx context.Context, statement string) (*Result, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, ErrEmptyStatement
	}
	if !c.connected() {
		return nil, ErrNotConnected
	}

	start := time.Now()
	rows, err := c.executor.QueryContext(ctx, statement)
	if err != nil {
		c.logger.Printf("❌ Sorgu hatası: %v", err)
		c.dispatch(events.EventStatementFailed, events.Statement{SQL: statement, Duration: time.Since(start), Err: err})
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	result, err := scanResult(rows)
	if err != nil {
		c.dispatch(events.EventStatementFailed, events.Statement{SQL: statement, Duration: time.Since(start), Err: err})
		return nil, err
	}
	c.dispatch(events.EventStatementExecuted, events.Statement{SQL: statement, Duration: time.Since(start), Rows: int64(result.Len())})
	return result, nil
}

// Exec, INSERT/REPLACE/UPDATE/DELETE statement'ını çalıştırır.
func (c *Connection) Exec(ctx context.Context, statement string) (sql.Result, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, ErrEmptyStatement
	}
	if !c.connected() {
		return nil, ErrNotConnected
	}

	start := time.Now()
	res, err := c.executor.ExecContext(ctx, statement)
	if err != nil {
		c.logger.Printf("❌ Statement hatası: %v", err)
		c.dispatch(events.EventStatementFailed, events.Statement{SQL: statement, Duration: time.Since(start), Err: err})
		return nil, fmt.Errorf("exec failed: %w", err)
	}

	affected, _ := res.RowsAffected()
	c.dispatch(events.EventStatementExecuted, events.Statement{SQL: statement, Duration: time.Since(start), Rows: affected})
	return res, nil
}

// CacheKey, statement metninden sonuç cache anahtarı üretir.
func CacheKey(statement string) string {
	return "query:" + strconv.FormatUint(xxhash.Sum64String(statement), 16)
}

// CachedQuery, SELECT sonucunu cache'den okur; yoksa çalıştırıp ttl süresince saklar.
// Cache bağlı değilse Query ile aynı davranır.
func (c *Connection) CachedQuery(ctx context.Context, statement string, ttl time.Duration) (*Result, error) {
	if c.cache == nil {
		return c.Query(ctx, statement)
	}
	if strings.TrimSpace(statement) == "" {
		return nil, ErrEmptyStatement
	}

	var fresh *Result
	payload, err := cache.Remember(ctx, c.cache, c.logger, CacheKey(statement), ttl, func() ([]byte, error) {
		result, err := c.Query(ctx, statement)
		if err != nil {
			return nil, err
		}
		fresh = result
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}

	if fresh != nil {
		c.dispatch(events.EventCacheMiss, events.Statement{SQL: statement})
		return fresh, nil
	}
	c.dispatch(events.EventCacheHit, events.Statement{SQL: statement})

	result, err := decodeResult(payload)
	if err != nil {
		return nil, fmt.Errorf("cached result decode failed: %w", err)
	}
	return result, nil
}

// Forget, statement'a ait cache kaydını siler.
func (c *Connection) Forget(ctx context.Context, statement string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, CacheKey(statement))
}

// Close, bağlantıyı kapatır. Havuz bu Connection tarafından açılmışsa
// (*sql.DB) kapatılır; transaction executor'ı kapatılmaz.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Printf("❌ Veritabanı kapatma hatası: %v", err)
			return err
		}
		c.logger.Println("✅ Veritabanı bağlantısı kapatıldı")
	}
	return nil
}
