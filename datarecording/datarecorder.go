// Package datarecording stores flat records in a SQLite database.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder buffers records and writes them into tables.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of
	// sampleEntry. Fields must be of basic kinds.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of the tables created.
	ListTables() []string

	// Flush writes all buffered entries.
	Flush()
}

// New creates a DataRecorder writing to path + ".sqlite3". An empty path
// gets a unique generated name. The file must not exist yet. Buffered data
// is flushed when the program exits through atexit.
func New(path string) DataRecorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 10000,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

// NewWithDB creates a DataRecorder on an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqliteWriter{
		DB:        db,
		batchSize: 10000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	entries []any
}

type sqliteWriter struct {
	*sql.DB

	lock       sync.Mutex
	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

func (w *sqliteWriter) init() {
	if w.dbName == "" {
		w.dbName = "elevsim_recording_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("entry of type %s is not a struct", t)
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("field %s of %s cannot be recorded", field.Name, t)
		}
	}

	return nil
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	names := structs.Names(sampleEntry)
	columns := make([]string, len(names))
	for i, n := range names {
		columns[i] = quoteIdent(n)
	}

	fields := strings.Join(columns, ", \n\t")
	w.mustExecute(`CREATE TABLE ` + quoteIdent(tableName) + ` (` + "\n\t" + fields + "\n" + `);`)

	w.tables[tableName] = &table{}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	t.entries = append(t.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	return names
}

func (w *sqliteWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.flush()
}

func (w *sqliteWriter) flush() {
	if w.entryCount == 0 {
		return
	}

	tx, err := w.Begin()
	if err != nil {
		panic(err)
	}

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		stmt := prepareInsert(tx, tableName, t.entries[0])

		for _, entry := range t.entries {
			v := reflect.ValueOf(entry)
			values := make([]any, 0, v.NumField())
			for i := 0; i < v.NumField(); i++ {
				values = append(values, v.Field(i).Interface())
			}

			if _, err := stmt.Exec(values...); err != nil {
				panic(err)
			}
		}

		stmt.Close()
		t.entries = nil
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	w.entryCount = 0
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func prepareInsert(tx *sql.Tx, tableName string, entry any) *sql.Stmt {
	placeholders := make([]string, len(structs.Names(entry)))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	sqlStr := "INSERT INTO " + quoteIdent(tableName) +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}

// quoteIdent quotes a table or column name so that names such as Where or
// Order do not clash with SQL keywords.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
