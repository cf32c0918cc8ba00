package bootstrap

import (
	"database/sql"
	"fmt"
	"io"

	_ "modernc.org/sqlite"

	"github.com/funvibe/oolong/internal/config"
	"github.com/funvibe/oolong/internal/dispatch"
	"github.com/funvibe/oolong/internal/dynamic"
)

// installDatabase wires SQLite access. Database handles are opaque values;
// the builtins take them untyped and check, since a guard cannot describe
// a pointer-shaped payload without also demanding mutable storage.
func installDatabase(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{"db_open", func(path string) (dynamic.Value, error) {
			db, err := sql.Open("sqlite", path)
			if err != nil {
				return dynamic.Value{}, fmt.Errorf("db_open %q: %w", path, err)
			}
			return dynamic.Box(db), nil
		}},

		{"db_close", func(v dynamic.Value) error {
			db, err := asDB(e, v, "db_close")
			if err != nil {
				return err
			}
			return db.Close()
		}},

		{"db_exec", func(v dynamic.Value, query string) (int64, error) {
			return dbExec(e, v, query, nil)
		}},
		{"db_exec", func(v dynamic.Value, query string, args []dynamic.Value) (int64, error) {
			return dbExec(e, v, query, args)
		}},

		{"db_query", func(v dynamic.Value, query string) (dynamic.Value, error) {
			return dbQuery(e, v, query, nil)
		}},
		{"db_query", func(v dynamic.Value, query string, args []dynamic.Value) (dynamic.Value, error) {
			return dbQuery(e, v, query, args)
		}},
	})
}

func asDB(e *dispatch.Engine, v dynamic.Value, op string) (*sql.DB, error) {
	db, err := dynamic.As[*sql.DB](v)
	if err != nil {
		return nil, fmt.Errorf("%s expects a %s, got %s", op, config.DatabaseTypeName, e.Types().TypeName(v))
	}
	return db, nil
}

func dbExec(e *dispatch.Engine, v dynamic.Value, query string, args []dynamic.Value) (int64, error) {
	db, err := asDB(e, v, "db_exec")
	if err != nil {
		return 0, err
	}
	bound, err := bindArgs(e, args)
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(query, bound...)
	if err != nil {
		return 0, fmt.Errorf("db_exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// The statement ran; not every statement kind reports a count.
		return 0, nil
	}
	return n, nil
}

// dbQuery returns the result set as a Vector of Maps, one per row, keyed
// by column name.
func dbQuery(e *dispatch.Engine, v dynamic.Value, query string, args []dynamic.Value) (dynamic.Value, error) {
	db, err := asDB(e, v, "db_query")
	if err != nil {
		return dynamic.Value{}, err
	}
	bound, err := bindArgs(e, args)
	if err != nil {
		return dynamic.Value{}, err
	}
	rows, err := db.Query(query, bound...)
	if err != nil {
		return dynamic.Value{}, fmt.Errorf("db_query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return dynamic.Value{}, fmt.Errorf("db_query: %w", err)
	}

	result := []dynamic.Value{}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return dynamic.Value{}, fmt.Errorf("db_query: %w", err)
		}
		row := make(map[string]dynamic.Value, len(cols))
		for i, col := range cols {
			row[col] = boxScanned(cells[i])
		}
		result = append(result, dynamic.Box(row))
	}
	if err := rows.Err(); err != nil {
		return dynamic.Value{}, fmt.Errorf("db_query: %w", err)
	}
	return dynamic.Box(result), nil
}

func bindArgs(e *dispatch.Engine, args []dynamic.Value) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	bound := make([]any, 0, len(args))
	for _, a := range args {
		u, err := unboxAny(e, a)
		if err != nil {
			return nil, err
		}
		bound = append(bound, u)
	}
	return bound, nil
}

func boxScanned(cell any) dynamic.Value {
	switch x := cell.(type) {
	case nil:
		return dynamic.Void()
	case int64:
		return dynamic.Box(x)
	case float64:
		return dynamic.Box(x)
	case bool:
		return dynamic.Box(x)
	case string:
		return dynamic.Box(x)
	case []byte:
		return dynamic.Box(string(x))
	default:
		return dynamic.Box(fmt.Sprintf("%v", x))
	}
}
