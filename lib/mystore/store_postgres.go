package mystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var supportedCompareOperators = map[string]bool{"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

type querier interface {
	Exec(c context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(c context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(c context.Context, sql string, args ...any) pgx.Row
}

// postgresStore keeps every entity as a json document in a table per kind
type postgresStore[T any] struct {
	pool  *pgxpool.Pool
	table string
}

func newPostgresStore[T any](c context.Context, databaseURL string) (*postgresStore[T], func(), error) {
	pool, err := pgxpool.New(c, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating postgres pool: %s", err)
	}

	s := &postgresStore[T]{
		pool:  pool,
		table: pgx.Identifier{strings.ToLower(kindOf[T]())}.Sanitize(),
	}

	_, err = pool.Exec(c, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (uid TEXT PRIMARY KEY, data JSONB NOT NULL)`, s.table))
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("error creating table %s: %s", s.table, err)
	}

	return s, func() {
		pool.Close()
	}, nil
}

func (s *postgresStore[T]) db(c context.Context) querier {
	tx, ok := c.Value(ctxTransactionKey{}).(pgx.Tx)
	if ok {
		return tx
	}
	return s.pool
}

func (s *postgresStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	return pgx.BeginFunc(c, s.pool, func(tx pgx.Tx) error {
		return f(context.WithValue(c, ctxTransactionKey{}, tx))
	})
}

func (s *postgresStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling entity %s with uid %s: %s", s.table, uid, err)
	}

	_, err = s.db(c).Exec(c,
		fmt.Sprintf(`INSERT INTO %s (uid, data) VALUES ($1, $2) ON CONFLICT (uid) DO UPDATE SET data = EXCLUDED.data`, s.table),
		uid, data)
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.table, uid, err)
	}

	return nil
}

func (s *postgresStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	var data []byte
	err := s.db(c).QueryRow(c, fmt.Sprintf(`SELECT data FROM %s WHERE uid = $1`, s.table), uid).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.table, uid, err)
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, false, fmt.Errorf("error unmarshalling entity %s with uid %s: %s", s.table, uid, err)
	}

	return value, true, nil
}

func (s *postgresStore[T]) List(c context.Context) ([]T, error) {
	return s.selectAll(c, fmt.Sprintf(`SELECT data FROM %s LIMIT 100`, s.table))
}

func (s *postgresStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	sql := strings.Builder{}
	sql.WriteString(fmt.Sprintf(`SELECT data FROM %s`, s.table))

	args := []any{}
	for i, f := range filters {
		if !supportedCompareOperators[f.Compare] {
			return nil, fmt.Errorf("unsupported compare operator '%s'", f.Compare)
		}
		if i == 0 {
			sql.WriteString(" WHERE ")
		} else {
			sql.WriteString(" AND ")
		}
		args = append(args, asText(f.Value))
		sql.WriteString(fmt.Sprintf(`data->>%s %s $%d`, quoteLiteral(f.Field), f.Compare, len(args)))
	}

	if orderByField != "" {
		sql.WriteString(fmt.Sprintf(` ORDER BY data->>%s`, quoteLiteral(orderByField)))
	}

	return s.selectAll(c, sql.String(), args...)
}

func (s *postgresStore[T]) selectAll(c context.Context, sql string, args ...any) ([]T, error) {
	rows, err := s.db(c).Query(c, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying entities %s: %s", s.table, err)
	}

	datas, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("error reading entities %s: %s", s.table, err)
	}

	result := make([]T, 0, len(datas))
	for _, data := range datas {
		var value T
		err = json.Unmarshal(data, &value)
		if err != nil {
			return nil, fmt.Errorf("error unmarshalling entity %s: %s", s.table, err)
		}
		result = append(result, value)
	}

	return result, nil
}

// asText renders a filter value the way encoding/json wrote it into the document
func asText(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
