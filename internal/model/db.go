package model

import (
	"fmt"
	"strings"

	"github.com/emrgen/graphbase/internal/schema"
	"gorm.io/gorm"
)

// Migrate creates the system tables and one physical table per
// descriptor table.
func Migrate(db *gorm.DB, s *schema.Schema) error {
	if err := db.AutoMigrate(&ViewEvent{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&RecordSequence{}); err != nil {
		return err
	}

	for _, t := range s.Tables {
		sql, err := CreateTableSQL(t)
		if err != nil {
			return err
		}
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}

	return nil
}

// CreateTableSQL renders the CREATE TABLE statement for a descriptor
// table: the versioning columns plus the declared domain columns, keyed
// by (id, version). Identifiers are quoted; the descriptor validated
// them against the identifier pattern at load time.
func CreateTableSQL(t *schema.Table) (string, error) {
	cols := []string{
		quoted(schema.ColID) + " INTEGER",
		quoted(schema.ColVersion) + " INTEGER",
		quoted(schema.ColStatus) + " TEXT",
		quoted(schema.ColTimestamp) + " TIMESTAMP",
		quoted(schema.ColCreatedBy) + " INTEGER",
	}

	for _, c := range t.Columns {
		sqlType, err := columnSQLType(c.Type)
		if err != nil {
			return "", fmt.Errorf("table %s column %s: %w", t.Name, c.Name, err)
		}
		cols = append(cols, quoted(c.Name)+" "+sqlType)
	}

	cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s, %s)", quoted(schema.ColID), quoted(schema.ColVersion)))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoted(t.Name), strings.Join(cols, ", ")), nil
}

// columnSQLType maps a semantic column type to a storage type portable
// across sqlite and postgres. The switch is exhaustive over the closed
// type set.
func columnSQLType(t schema.ColumnType) (string, error) {
	switch t {
	case schema.ColumnInteger:
		return "INTEGER", nil
	case schema.ColumnDecimal:
		return "NUMERIC", nil
	case schema.ColumnBoolean:
		return "BOOLEAN", nil
	case schema.ColumnDatetime:
		return "TIMESTAMP", nil
	case schema.ColumnText, schema.ColumnEmail, schema.ColumnURL, schema.ColumnJSON, schema.ColumnHidden:
		return "TEXT", nil
	}
	return "", fmt.Errorf("unhandled column type %q", t)
}

func quoted(ident string) string {
	return `"` + ident + `"`
}
