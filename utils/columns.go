package utils

import "reflect"

// ColumnList returns the "db" tag of every field of the db model struct, in
// declaration order. Used to build SELECT column lists that stay in sync with
// the struct scanned by pgx.RowToStructByName.
func ColumnList[DBModel any]() []string {
	var dbModel DBModel
	modelType := reflect.TypeOf(dbModel)

	columns := make([]string, 0, modelType.NumField())
	for i := 0; i < modelType.NumField(); i++ {
		tag, ok := modelType.Field(i).Tag.Lookup("db")
		if !ok || tag == "-" {
			continue
		}
		columns = append(columns, tag)
	}
	return columns
}
