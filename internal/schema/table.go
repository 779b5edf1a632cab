// Package schema compares the tables in a live database against the gorm
// models the service writes through.
package schema

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
	GORMSchema "gorm.io/gorm/schema"
)

// Table is a parsed gorm model with the columns it maps to.
type Table struct {
	*GORMSchema.Schema
	Columns []*Column
}

func (t *Table) TableName() string {
	return t.Table
}

// Column is a single persisted model field.
type Column struct {
	*GORMSchema.Field
}

func (c *Column) ColumnName() string {
	return c.DBName
}

// FromModel parses model with the default naming strategy. Fields gorm
// does not persist are left out.
func FromModel(model interface{}) (*Table, error) {
	parsed, err := GORMSchema.Parse(model, &sync.Map{}, GORMSchema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
	}

	columns := make([]*Column, 0, len(parsed.Fields))
	for _, field := range parsed.Fields {
		if field.DBName == "" {
			continue
		}
		columns = append(columns, &Column{Field: field})
	}
	return &Table{Schema: parsed, Columns: columns}, nil
}

// Drift describes one difference between a model and the database.
type Drift struct {
	Table  string
	Column string // empty when the whole table is missing
}

func (d Drift) String() string {
	if d.Column == "" {
		return fmt.Sprintf("table %s is missing", d.Table)
	}
	return fmt.Sprintf("column %s.%s is missing", d.Table, d.Column)
}

// Check reports every table and column the models expect but the database
// lacks. Extra columns in the database are not reported.
func Check(db *gorm.DB, models ...interface{}) ([]Drift, error) {
	var drift []Drift
	migrator := db.Migrator()
	for _, model := range models {
		table, err := FromModel(model)
		if err != nil {
			return nil, err
		}
		if !migrator.HasTable(table.TableName()) {
			drift = append(drift, Drift{Table: table.TableName()})
			continue
		}
		for _, column := range table.Columns {
			if !migrator.HasColumn(model, column.ColumnName()) {
				drift = append(drift, Drift{Table: table.TableName(), Column: column.ColumnName()})
			}
		}
	}
	return drift, nil
}
