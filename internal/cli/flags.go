package cli

import (
	"fmt"
	"strings"

	"github.com/biyonik/dml-composer/pkg/database"
	"github.com/spf13/cobra"
)

// conditionFlags, WHERE koşullarını taşıyan ortak flag'lerdir.
type conditionFlags struct {
	where     []string
	orWhere   []string
	whereEq   []string
	whereLike []string
	whereNull []string
}

func (f *conditionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.where, "where", nil, "Raw WHERE condition joined with AND (repeatable)")
	cmd.Flags().StringArrayVar(&f.orWhere, "or-where", nil, "Raw WHERE condition joined with OR (repeatable)")
	cmd.Flags().StringArrayVar(&f.whereEq, "where-eq", nil, "column=value, value escaped through the connection (requires --execute)")
	cmd.Flags().StringArrayVar(&f.whereLike, "where-like", nil, "column=value, rendered as LIKE '%value%' (requires --execute)")
	cmd.Flags().StringArrayVar(&f.whereNull, "where-null", nil, "Column that must be NULL (repeatable)")
}

// apply, koşulları builder'a ekler. Literal üreten flag'ler Escaper ister.
func (f *conditionFlags) apply(qb *database.QueryBuilder, e database.Escaper) error {
	for _, expr := range f.where {
		qb.Where(expr)
	}
	for _, expr := range f.orWhere {
		qb.OrWhere(expr)
	}

	for _, pair := range f.whereEq {
		column, raw, err := splitAssignment(pair)
		if err != nil {
			return err
		}
		literal, err := qb.Value(e, raw, "", "")
		if err != nil {
			return fmt.Errorf("--where-eq %s: %w", column, err)
		}
		qb.WhereOp(column, "=", literal)
	}

	for _, pair := range f.whereLike {
		column, raw, err := splitAssignment(pair)
		if err != nil {
			return err
		}
		literal, err := qb.LikeValue(e, raw, database.LikeBoth, "", "")
		if err != nil {
			return fmt.Errorf("--where-like %s: %w", column, err)
		}
		qb.WhereOp(column, "LIKE", literal)
	}

	for _, column := range f.whereNull {
		qb.WhereOp(column, "IS", "")
	}
	return nil
}

// splitAssignment, "column=value" çiftini ayırır.
func splitAssignment(pair string) (string, string, error) {
	column, value, ok := strings.Cut(pair, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return "", "", fmt.Errorf("invalid assignment %q (expected column=value)", pair)
	}
	return column, strings.TrimSpace(value), nil
}

// parseAssignments, "column=literal" listesini map'e çevirir.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		column, literal, err := splitAssignment(pair)
		if err != nil {
			return nil, err
		}
		values[column] = literal
	}
	return values, nil
}

// parseOrder, "column" veya "column:desc" biçimini ayırır.
func parseOrder(arg string) (string, database.OrderDirection) {
	if i := strings.LastIndex(arg, ":"); i >= 0 {
		if direction := database.ParseDirection(arg[i+1:]); direction != database.OrderNone {
			return arg[:i], direction
		}
	}
	return arg, database.OrderNone
}

// parseJoin, "type:table:on" biçimini ayırır. CROSS için on boş olabilir.
//
// Örnek:
//
//	left:posts p:p.user_id = u.id
func parseJoin(arg string) (database.JoinType, string, string, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) < 2 {
		return "", "", "", fmt.Errorf("invalid join %q (expected type:table[:on])", arg)
	}
	on := ""
	if len(parts) == 3 {
		on = parts[2]
	}
	return database.JoinType(strings.ToUpper(strings.TrimSpace(parts[0]))), parts[1], on, nil
}

// parseIndexHint, "action[/scope]:index1,index2" biçimini ayırır.
//
// Örnek:
//
//	force:idx_email
//	use/order by:idx_created,PRIMARY
func parseIndexHint(arg string) (database.IndexHint, error) {
	head, list, ok := strings.Cut(arg, ":")
	if !ok {
		return database.IndexHint{}, fmt.Errorf("invalid index hint %q (expected action[/scope]:indexes)", arg)
	}

	action, scope, _ := strings.Cut(head, "/")
	hint := database.IndexHint{
		Action: database.IndexHintAction(strings.ToUpper(strings.TrimSpace(action))),
		Scope:  database.IndexHintScope(strings.ToUpper(strings.TrimSpace(scope))),
	}
	for _, index := range strings.Split(list, ",") {
		if index = strings.TrimSpace(index); index != "" {
			hint.Indexes = append(hint.Indexes, index)
		}
	}
	return hint, nil
}

// parseRow, "1, 'a', NOW()" satırını literal listesine ayırır. Tırnak
// içindeki ve parantez içindeki virgüller ayıraç sayılmaz; literal'ler
// olduğu gibi korunur.
//
// Örnek:
//
//	'a,b', CONCAT('x', 'y'), 3 → ['a,b'] [CONCAT('x', 'y')] [3]
func parseRow(row string) []string {
	var (
		literals []string
		current  strings.Builder
		quote    rune
		escaped  bool
		depth    int
	)

	flush := func() {
		if literal := strings.TrimSpace(current.String()); literal != "" {
			literals = append(literals, literal)
		}
		current.Reset()
	}

	for _, r := range row {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			switch r {
			case '\\':
				escaped = quote != '`'
			case quote:
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case r == ',' && depth == 0:
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	if literals == nil {
		literals = []string{}
	}
	return literals
}
