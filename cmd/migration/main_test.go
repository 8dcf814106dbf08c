package main

import (
	"strings"
	"testing"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "default one", want: 1},
		{name: "explicit", args: []string{" 3 "}, want: 3},
		{name: "zero", args: []string{"0"}, wantErr: true},
		{name: "garbage", args: []string{"x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSteps(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse steps: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseSteps(%v)=%d want=%d", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	if v, err := parseVersion("5"); err != nil || v != 5 {
		t.Fatalf("parseVersion(5)=%d, %v", v, err)
	}
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if v, err := parseTarget(" 4 "); err != nil || v != 4 {
		t.Fatalf("parseTarget(4)=%d, %v", v, err)
	}
	if _, err := parseTarget("-4"); err == nil {
		t.Fatalf("expected error for negative target")
	}
}

func TestWithMigrationsTable(t *testing.T) {
	in := "postgres://u:p@localhost:5432/prediction_league?sslmode=disable"

	got := withMigrationsTable(in, "league_migrations")
	if !strings.Contains(got, "x-migrations-table=league_migrations") {
		t.Fatalf("expected migrations table param, got %q", got)
	}
	if withMigrationsTable(in, "") != in {
		t.Fatalf("expected url unchanged without table")
	}

	explicit := in + "&x-migrations-table=custom"
	if withMigrationsTable(explicit, "league_migrations") != explicit {
		t.Fatalf("expected explicit table to win")
	}
}
