package mock

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Db is a shared in-memory SQLite database holding the application tables.
type Db struct {
	DbConn *gorm.DB
	models []any
	tables map[string]any
}

var (
	dbOnce   sync.Once
	sharedDb *Db
)

// NewDb opens the database on first use and recreates the tables of models.
func NewDb(models ...any) *Db {
	dbOnce.Do(func() {
		d, err := openDb(models)
		if err != nil {
			panic(err)
		}
		sharedDb = d
	})
	return sharedDb
}

func openDb(models []any) (*Db, error) {
	conn, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, err
	}
	// One connection keeps every query on the same in-memory database.
	conn.SetMaxOpenConns(1)

	gdb, err := gorm.Open(sqlite.Dialector{Conn: conn}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	d := &Db{DbConn: gdb, models: models, tables: make(map[string]any, len(models))}
	for _, m := range models {
		table, err := d.tableName(m)
		if err != nil {
			return nil, fmt.Errorf("parse model %T: %w", m, err)
		}
		d.tables[table] = m
		if err := gdb.Migrator().DropTable(m); err != nil {
			return nil, err
		}
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// ClearDB hard-deletes every row, soft-deleted ones included.
func (d *Db) ClearDB() error {
	for _, m := range d.models {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetModel returns the model mapped to table.
func (d *Db) GetModel(table string) (any, bool) {
	m, ok := d.tables[table]
	return m, ok
}

// Count returns how many rows of table exist. deletedOnly narrows the count
// to soft-deleted rows.
func (d *Db) Count(table string, deletedOnly bool) (int64, error) {
	m, ok := d.tables[table]
	if !ok {
		return 0, fmt.Errorf("table %q is not mapped", table)
	}
	query := d.DbConn.Unscoped().Model(m)
	if deletedOnly {
		query = query.Where("deleted_at IS NOT NULL")
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

func (d *Db) tableName(m any) (string, error) {
	stmt := &gorm.Statement{DB: d.DbConn}
	if err := stmt.Parse(m); err != nil {
		return "", err
	}
	return stmt.Schema.Table, nil
}
