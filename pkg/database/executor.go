package database

import (
	"context"
	"database/sql"
)

/*
*
// QueryExecutor, hem *sql.DB (havuz) hem de *sql.Tx (transaction)
// tarafından örtük olarak uygulanan context'li metodları tanımlar.
//
// Connection *sql.DB'ye kilitlenmek yerine bu arayüzü kullanır; böylece
// oluşturulan statement'lar hem normal bağlantıda hem transaction içinde
// çalıştırılabilir.
*/
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}
