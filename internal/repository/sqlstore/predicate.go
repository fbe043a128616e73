package sqlstore

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"docvault/internal/query"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where applies every condition of the predicate to the builder. Conditions are ANDed.
func where(b sq.SelectBuilder, pred query.Predicate, d Dialect) (sq.SelectBuilder, error) {
	for _, c := range pred.Conditions {
		expr, err := toSqlizer(c, d)
		if err != nil {
			return b, err
		}
		b = b.Where(expr)
	}
	return b, nil
}

func toSqlizer(c query.Condition, d Dialect) (sq.Sqlizer, error) {
	switch c := c.(type) {
	case query.OwnerEquals:
		return sq.Eq{"documents.user_name": c.Owner}, nil
	case query.NameContains:
		pattern := "%" + likeEscaper.Replace(strings.ToLower(c.Fragment)) + "%"
		return sq.Expr(d.Lower+`(documents.document_name) LIKE ? ESCAPE '\'`, pattern), nil
	case query.HasTag:
		// Existence test per tag: no join, so no duplicate rows.
		return sq.Expr("EXISTS (SELECT 1 FROM tags t WHERE t.document_id = documents.id AND t.tag_name = ?)", c.Name), nil
	default:
		return nil, fmt.Errorf("unsupported condition %T", c)
	}
}
