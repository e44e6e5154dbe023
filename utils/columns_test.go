package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnList(t *testing.T) {
	type dbModel struct {
		Id        string `db:"id"`
		Name      string `db:"name"`
		Ignored   string `db:"-"`
		NoTag     string
		CreatedAt string `db:"created_at"`
	}

	assert.Equal(t, []string{"id", "name", "created_at"}, ColumnList[dbModel]())
}
