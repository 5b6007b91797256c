// pkg/database/transaction.go
//
// Bir transaction; bir grup statement'ın *ya tamamen uygulanmasını* ya da
// *hiçbirinin uygulanmamasını* sağlar. Buradaki Transaction yapısı sql.Tx'i
// sarar ve transaction'a bağlı bir Connection sunar; böylece builder'larla
// oluşturulan statement'lar aynı transaction içinde escape edilip çalıştırılır.
//
// Örnek kullanım:
//
//   tx, _ := BeginTransaction(ctx, db, NewMySQLGrammar(), logger)
//   qb := tx.NewBuilder()
//   lit, _ := qb.Value(tx.Connection(), "active", "", "")
//   stmt := qb.Update("users", true).SetValue("status", lit, true).
//       Where("id = 1").GetUpdateQuery()
//   if _, err := tx.Connection().Exec(ctx, stmt); err != nil {
//       tx.Rollback()
//   }
//   tx.Commit()

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// Transaction
//
// Veritabanı transaction yapısını temsil eder.
// sql.Tx nesnesini ve ona bağlı Connection'ı saklar.
type Transaction struct {
	Tx     *sql.Tx
	conn   *Connection
	logger *log.Logger
}

// BeginTransaction
//
// Yeni bir veritabanı transaction'ı başlatır.
// Dönen Transaction mutlaka `Commit()` veya `Rollback()` ile sonlandırılmalıdır.
//
// Parametreler:
//   - ctx: Transaction context'i
//   - db: İşlem yapılacak veritabanı havuzu
//   - grammar: Builder'ların kullanacağı lehçe
//   - logger: Log çıktısı (nil ise log.Default)
func BeginTransaction(ctx context.Context, db *sql.DB, grammar Grammar, logger *log.Logger) (*Transaction, error) {
	if db == nil {
		return nil, ErrNotConnected
	}
	if logger == nil {
		logger = log.Default()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("transaction begin failed: %w", err)
	}
	logger.Println("🔄 Transaction başladı.")

	return &Transaction{
		Tx:     tx,
		conn:   NewConnection(tx, grammar, logger),
		logger: logger,
	}, nil
}

// Connection, transaction'a bağlı Connection'ı döndürür.
func (t *Transaction) Connection() *Connection {
	return t.conn
}

// NewBuilder, transaction'ın grammar'ı ile yeni bir QueryBuilder oluşturur.
func (t *Transaction) NewBuilder() *QueryBuilder {
	return t.conn.NewBuilder()
}

// Commit
//
// Transaction'ı başarılı şekilde sonlandırır. Sonrasında bağlı Connection
// ErrNotConnected döner.
func (t *Transaction) Commit() error {
	err := t.Tx.Commit()
	t.conn.closed.Store(true)
	if err == nil {
		t.logger.Println("✅ Transaction commit edildi.")
	}
	return err
}

// Rollback
//
// Transaction sırasında bir hata oluştuğunda çağrılır.
// Yapılmış tüm değişiklikler geri alınır.
func (t *Transaction) Rollback() error {
	err := t.Tx.Rollback()
	t.conn.closed.Store(true)
	if err == nil {
		t.logger.Println("❌ Transaction geri alındı.")
	}
	return err
}
