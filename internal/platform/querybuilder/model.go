package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// InsertModel builds an INSERT from the exported `db`-tagged fields of model.
// suffix is appended verbatim (ON CONFLICT, RETURNING).
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// UpsertModel is InsertModel with an ON CONFLICT ... DO UPDATE clause that
// overwrites every non-key column from EXCLUDED. extraSet entries such as
// "updated_at = NOW()" are appended to the SET list.
func UpsertModel(table string, model any, conflictCols []string, extraSet ...string) (string, []any, error) {
	if len(conflictCols) == 0 {
		return "", nil, fmt.Errorf("upsert into %s: conflict columns are required", table)
	}
	cols, _, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, 0, len(cols)+len(extraSet))
	for _, col := range cols {
		if slices.Contains(conflictCols, col) {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	for _, set := range extraSet {
		if set = strings.TrimSpace(set); set != "" {
			sets = append(sets, set)
		}
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("upsert into %s: nothing to update", table)
	}

	suffix := fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(conflictCols, ", "), strings.Join(sets, ", "))
	return InsertModel(table, model, suffix)
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}
	return cols, vals, nil
}
