package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "postgres://u:p@db:5432/stock?sslmode=disable", want: "pgx5://u:p@db:5432/stock?sslmode=disable"},
		{in: "postgresql://db/stock", want: "pgx5://db/stock"},
		{in: "pgx5://db/stock", want: "pgx5://db/stock"},
		{in: "host=db dbname=stock", wantErr: true},
	}

	for _, tt := range tests {
		got, err := migrationURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("migrationURL(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("migrationURL(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("migrationURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir error = %v", err)
	}

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 {
		t.Fatal("no up migrations embedded")
	}
	if ups != downs {
		t.Errorf("up migrations = %d, down migrations = %d", ups, downs)
	}
}
