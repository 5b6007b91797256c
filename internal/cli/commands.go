package cli

import (
	"fmt"
	"strings"

	"github.com/biyonik/dml-composer/pkg/database"
	"github.com/spf13/cobra"
)

// buildFunc, flag'lerden builder'ı doldurur.
type buildFunc func(qb *database.QueryBuilder, e database.Escaper) error

// run, builder'ı hazırlar, statement'ı yazar ve --execute ile çalıştırır.
func (a *app) run(cmd *cobra.Command, kind database.StatementKind, build buildFunc) error {
	var (
		conn *database.Connection
		e    database.Escaper
	)
	if a.execute {
		c, cleanup, err := a.connect(cmd.Context())
		defer cleanup()
		if err != nil {
			return err
		}
		conn, e = c, c
	}

	qb := database.NewBuilder(a.grammar)
	if err := build(qb, e); err != nil {
		return err
	}

	stmt := qb.Compile(kind)
	if stmt == "" {
		return fmt.Errorf("%s statement incomplete: %w", kind, database.ErrEmptyStatement)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, stmt)
	if conn == nil {
		return nil
	}

	if kind == database.KindSelect {
		result, err := conn.CachedQuery(cmd.Context(), stmt, a.cfg.Cache.TTL)
		if err != nil {
			return err
		}
		return renderResult(out, result, a.output)
	}

	res, err := conn.Exec(cmd.Context(), stmt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d row(s) affected\n", affected)
	return nil
}

func applyModes(set func(string) *database.QueryBuilder, keywords []string) {
	for _, keyword := range keywords {
		set(keyword)
	}
}

func applyOrders(add func(string, database.OrderDirection) *database.QueryBuilder, args []string) {
	for _, arg := range args {
		column, direction := parseOrder(arg)
		add(column, direction)
	}
}

func applyJoins(qb *database.QueryBuilder, args []string, escape bool) error {
	for _, arg := range args {
		kind, table, on, err := parseJoin(arg)
		if err != nil {
			return err
		}
		qb.Join(kind, table, escape, on)
	}
	return nil
}

// -----------------------------------------------------------------------------
// SELECT
// -----------------------------------------------------------------------------

func newSelectCommand(a *app) *cobra.Command {
	var (
		modes, columns, rawColumns, hexColumns []string
		from                                   string
		hints, joins, groups, havings, orders  []string
		locks                                  []string
		limit, offset                          int
		escape                                 bool
		conds                                  conditionFlags
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Compose a SELECT statement",
		Example: `  sqlcompose select --mode distinct --column id --column "name AS n" --from users \
    --where-null deleted_at --order-by id:desc --limit 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, database.KindSelect, func(qb *database.QueryBuilder, e database.Escaper) error {
				applyModes(qb.SelectMode, modes)
				for _, column := range columns {
					qb.Select(column, escape, false)
				}
				for _, column := range rawColumns {
					qb.Select(column, false, false)
				}
				for _, column := range hexColumns {
					qb.Select(column, true, true)
				}

				indexHints := make([]database.IndexHint, 0, len(hints))
				for _, arg := range hints {
					hint, err := parseIndexHint(arg)
					if err != nil {
						return err
					}
					indexHints = append(indexHints, hint)
				}
				qb.From(from, escape, indexHints...)

				if err := applyJoins(qb, joins, escape); err != nil {
					return err
				}
				if err := conds.apply(qb, e); err != nil {
					return err
				}
				applyOrders(qb.GroupBy, groups)
				for _, expr := range havings {
					qb.Having(expr)
				}
				applyOrders(qb.OrderBy, orders)
				qb.Limit(limit, offset)
				applyModes(qb.LockMode, locks)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&modes, "mode", nil, "SELECT modifier (DISTINCT, SQL_CACHE, STRAIGHT_JOIN, ...)")
	f.StringArrayVar(&columns, "column", nil, "Column list, quoted unless --escape=false (repeatable)")
	f.StringArrayVar(&rawColumns, "raw-column", nil, "Column expression used verbatim (repeatable)")
	f.StringArrayVar(&hexColumns, "hex-column", nil, "Column wrapped in HEX() (repeatable)")
	f.StringVar(&from, "from", "", "Source table")
	f.StringArrayVar(&hints, "index-hint", nil, "Index hint action[/scope]:indexes (MySQL)")
	f.StringArrayVar(&joins, "join", nil, "JOIN as type:table[:on] (repeatable)")
	f.StringArrayVar(&groups, "group-by", nil, "GROUP BY column[:asc|desc] (repeatable)")
	f.StringArrayVar(&havings, "having", nil, "Raw HAVING condition (repeatable)")
	f.StringArrayVar(&orders, "order-by", nil, "ORDER BY column[:asc|desc] (repeatable)")
	f.IntVar(&limit, "limit", -1, "Row count (negative disables LIMIT)")
	f.IntVar(&offset, "offset", 0, "Row offset")
	f.StringArrayVar(&locks, "lock", nil, "Locking read (FOR UPDATE, LOCK IN SHARE MODE, NOWAIT, ...)")
	f.BoolVar(&escape, "escape", true, "Quote identifiers")
	conds.register(cmd)

	return cmd
}

// -----------------------------------------------------------------------------
// INSERT / REPLACE
// -----------------------------------------------------------------------------

func newInsertCommand(a *app, kind database.StatementKind) *cobra.Command {
	var (
		modes, columns, rows, sets, upserts []string
		into, selectStmt                    string
		escape                              bool
	)

	use := strings.ToLower(kind.String())
	article := "a"
	if kind == database.KindInsert {
		article = "an"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Compose %s %s statement", article, kind),
		Example: fmt.Sprintf(`  sqlcompose %s --into users --column name --column age --values "'ali', 30"
  sqlcompose %s --into archive --select "SELECT * FROM users"`, use, use),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, kind, func(qb *database.QueryBuilder, _ database.Escaper) error {
				if kind == database.KindReplace {
					applyModes(qb.ReplaceMode, modes)
				} else {
					applyModes(qb.InsertMode, modes)
				}

				qb.Into(into, escape).ColumnNames(columns, escape)
				for _, row := range rows {
					qb.Values(parseRow(row))
				}

				values, err := parseAssignments(sets)
				if err != nil {
					return err
				}
				qb.Set(values, escape)

				if selectStmt != "" {
					qb.SelectStatement(selectStmt)
				}

				if kind == database.KindInsert {
					updates, err := parseAssignments(upserts)
					if err != nil {
						return err
					}
					qb.OnDuplicateKeyUpdate(updates, escape)
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&modes, "mode", nil, "Statement modifier (LOW_PRIORITY, DELAYED, ...)")
	f.StringVar(&into, "into", "", "Target table")
	f.StringArrayVar(&columns, "column", nil, "Column name (repeatable)")
	f.StringArrayVar(&rows, "values", nil, "Comma separated SQL literals for one row (repeatable)")
	f.StringArrayVar(&sets, "set", nil, "column=literal assignment (repeatable)")
	f.StringVar(&selectStmt, "select", "", "SELECT statement used as payload")
	f.BoolVar(&escape, "escape", true, "Quote identifiers")
	if kind == database.KindInsert {
		f.StringArrayVar(&upserts, "on-duplicate", nil, "column=literal for ON DUPLICATE KEY UPDATE (MySQL)")
	}

	return cmd
}

// -----------------------------------------------------------------------------
// DELETE
// -----------------------------------------------------------------------------

func newDeleteCommand(a *app) *cobra.Command {
	var (
		modes, targets, joins, orders []string
		from                          string
		limit                         int
		escape                        bool
		conds                         conditionFlags
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Compose a DELETE statement",
		Example: `  sqlcompose delete --from sessions --where "expires_at < NOW()" --order-by id --limit 100
  sqlcompose delete --target t1 --from t1 --join "inner:t2:t2.id = t1.id"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, database.KindDelete, func(qb *database.QueryBuilder, e database.Escaper) error {
				applyModes(qb.DeleteMode, modes)
				for _, target := range targets {
					qb.Delete(target)
				}
				qb.From(from, escape)
				if err := applyJoins(qb, joins, escape); err != nil {
					return err
				}
				if err := conds.apply(qb, e); err != nil {
					return err
				}
				applyOrders(qb.OrderBy, orders)
				qb.Limit(limit, database.NoOffset)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&modes, "mode", nil, "DELETE modifier (LOW_PRIORITY, QUICK, IGNORE)")
	f.StringArrayVar(&targets, "target", nil, "Table to delete rows from in multi-table form (repeatable)")
	f.StringVar(&from, "from", "", "Source table")
	f.StringArrayVar(&joins, "join", nil, "JOIN as type:table[:on] (repeatable)")
	f.StringArrayVar(&orders, "order-by", nil, "ORDER BY column[:asc|desc], single-table form only")
	f.IntVar(&limit, "limit", -1, "Row count, single-table form only")
	f.BoolVar(&escape, "escape", true, "Quote identifiers")
	conds.register(cmd)

	return cmd
}

// -----------------------------------------------------------------------------
// UPDATE
// -----------------------------------------------------------------------------

func newUpdateCommand(a *app) *cobra.Command {
	var (
		modes, sets, joins, orders []string
		table                      string
		limit                      int
		escape                     bool
		conds                      conditionFlags
	)

	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Compose an UPDATE statement",
		Example: `  sqlcompose update --table users --set "status='banned'" --where "id = 7"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, database.KindUpdate, func(qb *database.QueryBuilder, e database.Escaper) error {
				applyModes(qb.UpdateMode, modes)
				qb.Update(table, escape)
				if err := applyJoins(qb, joins, escape); err != nil {
					return err
				}

				values, err := parseAssignments(sets)
				if err != nil {
					return err
				}
				qb.Set(values, escape)

				if err := conds.apply(qb, e); err != nil {
					return err
				}
				applyOrders(qb.OrderBy, orders)
				qb.Limit(limit, database.NoOffset)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&modes, "mode", nil, "UPDATE modifier (LOW_PRIORITY, IGNORE)")
	f.StringVar(&table, "table", "", "Target table")
	f.StringArrayVar(&sets, "set", nil, "column=literal assignment (repeatable)")
	f.StringArrayVar(&joins, "join", nil, "JOIN as type:table[:on] (repeatable)")
	f.StringArrayVar(&orders, "order-by", nil, "ORDER BY column[:asc|desc]")
	f.IntVar(&limit, "limit", -1, "Row count")
	f.BoolVar(&escape, "escape", true, "Quote identifiers")
	conds.register(cmd)

	return cmd
}
