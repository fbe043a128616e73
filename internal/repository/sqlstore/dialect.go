package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
)

// sqliteTimeLayout is fixed width so that lexical order of stored text equals time order.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

// sqliteLowerFunc folds case like strings.ToLower. The built-in LOWER of SQLite only folds ASCII.
const sqliteLowerFunc = "docvault_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", sqliteLowerFunc, v)
	}
}

// Dialect captures the per-engine differences the store cares about.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	EncodeTime  func(time.Time) driver.Value
	// Lower is the SQL function that folds case for case-insensitive matching.
	Lower string
}

// Postgres uses $n placeholders and native TIMESTAMPTZ columns.
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: sq.Dollar,
	Lower:       "LOWER",
	EncodeTime: func(t time.Time) driver.Value {
		return t.UTC()
	},
}

// SQLite uses ? placeholders and stores timestamps as fixed-width UTC text.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: sq.Question,
	Lower:       sqliteLowerFunc,
	EncodeTime: func(t time.Time) driver.Value {
		return t.UTC().Format(sqliteTimeLayout)
	},
}

// DialectFor resolves a configured driver name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
}

// timestamp scans either a native time value or the text encoding written by SQLite.
type timestamp struct {
	t *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts.t = time.Time{}
		return nil
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (ts timestamp) parse(s string) error {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}
