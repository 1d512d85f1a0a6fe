package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// QueryParams narrows a Query.
type QueryParams struct {
	// Where is the WHERE clause without the keyword, e.g. "Elevator = ?".
	Where string

	// Args fill the placeholders in Where.
	Args []any

	// Limit caps the number of rows; 0 means no limit.
	Limit int

	// Offset skips rows; only used together with Limit.
	Offset int

	// OrderBy is the ORDER BY clause without the keywords.
	OrderBy string
}

// DataReader reads tables written by a DataRecorder back into structs.
type DataReader interface {
	// MapTable associates a table with the struct type of sampleEntry.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables.
	ListTables() []string

	// Query returns pointers to structs of the mapped type and the total
	// number of matching rows, ignoring Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the database.
	Close() error
}

type sqliteReader struct {
	*sql.DB

	typeMap map[string]reflect.Type
}

// NewReader opens the SQLite file dbFilename for reading.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader on an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.typeMap))
	for t := range r.typeMap {
		tables = append(tables, t)
	}

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("no mapping found for table: %s", tableName)
	}

	query := "SELECT * FROM " + quoteIdent(tableName)

	if params.Where != "" {
		query += " WHERE " + params.Where
	}

	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
		if params.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", params.Offset)
		}
	}

	totalCount, err := r.queryTotalCount(ctx, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanRows(rows, structType)
	if err != nil {
		return nil, 0, err
	}

	return results, totalCount, nil
}

func (r *sqliteReader) queryTotalCount(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	countQuery := "SELECT COUNT(*) FROM " + quoteIdent(tableName)
	if params.Where != "" {
		countQuery += " WHERE " + params.Where
	}

	var totalCount int

	err := r.QueryRowContext(ctx, countQuery, params.Args...).Scan(&totalCount)
	if err != nil {
		return 0, err
	}

	return totalCount, nil
}

func scanRows(rows *sql.Rows, structType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldMap := make(map[string]int)
	for i := 0; i < structType.NumField(); i++ {
		fieldMap[structType.Field(i).Name] = i
	}

	var results []any

	for rows.Next() {
		structPtr := reflect.New(structType)
		structVal := structPtr.Elem()
		targets := make([]any, len(columns))

		for i, col := range columns {
			if idx, ok := fieldMap[col]; ok {
				targets[i] = structVal.Field(idx).Addr().Interface()
			} else {
				var placeholder any
				targets[i] = &placeholder
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, structPtr.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}
