package database

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
)

// -----------------------------------------------------------------------------
// RESULT HELPERS
// -----------------------------------------------------------------------------
// SQL'den dönen satırları kolon sırasını koruyarak belleğe okur. Result,
// sonuç cache'ine JSON olarak yazılabilecek şekilde düz değerler taşır:
// []byte değerler string'e çevrilir.
// -----------------------------------------------------------------------------

// Result, bir SELECT çalıştırmasının belleğe alınmış sonucudur.
type Result struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Len, satır sayısını döndürür.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Maps, satırları kolon adı → değer map'lerine dönüştürür.
func (r *Result) Maps() []map[string]interface{} {
	res := make([]map[string]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		m := make(map[string]interface{}, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		res = append(res, m)
	}
	return res
}

// decodeResult, cache'ten okunan JSON payload'ı Result'a çevirir. Sayılar
// json.Number olarak okunur; tam sayılar int64, diğerleri float64 olur.
func decodeResult(payload []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var res Result
	if err := dec.Decode(&res); err != nil {
		return nil, err
	}

	for _, row := range res.Rows {
		for i, v := range row {
			n, ok := v.(json.Number)
			if !ok {
				continue
			}
			if i64, err := n.Int64(); err == nil {
				row[i] = i64
			} else if f64, err := n.Float64(); err == nil {
				row[i] = f64
			} else {
				row[i] = n.String()
			}
		}
	}
	if res.Rows == nil {
		res.Rows = make([][]interface{}, 0)
	}
	return &res, nil
}

// scanResult: sql.Rows'ı Result biçimine dönüştürür.
func scanResult(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns read failed: %w", err)
	}

	res := &Result{Columns: cols, Rows: make([][]interface{}, 0)}

	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return res, nil
}
