package sqlite

import (
	"testing"

	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data/app.db", "data/app.db?" + pragmas},
		{":memory:", ":memory:?" + pragmas},
		{"file:app.db?mode=ro", "file:app.db?mode=ro&" + pragmas},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := DSN(&database.Target{Dialect: dialect.SQLite, Database: tt.path})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTarget_InMemory(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{":memory:", true},
		{"file::memory:?cache=shared", true},
		{"file:mem1?mode=memory&cache=shared", true},
		{"data/app.db", false},
		{"file:app.db?mode=ro", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			target := &database.Target{Dialect: dialect.SQLite, Database: tt.path}
			assert.Equal(t, tt.want, target.InMemory())
		})
	}
}
