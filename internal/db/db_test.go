package db

import (
	"path/filepath"
	"testing"
)

func TestMigrationsApplyToFreshDatabase(t *testing.T) {
	conn, err := OpenPath(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { Close() })

	status, err := GetMigrationStatus()
	if err != nil {
		t.Fatalf("GetMigrationStatus: %v", err)
	}
	if status.CurrentVersion != 0 || !status.Pending || status.LatestVersion != 2 {
		t.Fatalf("fresh status = %+v", status)
	}

	if err := RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if err := RunMigrations(); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	status, err = GetMigrationStatus()
	if err != nil {
		t.Fatalf("GetMigrationStatus: %v", err)
	}
	if status.CurrentVersion != 2 || status.Pending || status.Dirty {
		t.Fatalf("migrated status = %+v", status)
	}

	for _, table := range []string{"members", "skills", "member_skills", "shifts", "tasks", "order_set_items", "explicit_rules", "assignments", "daily_workloads", "unassigned_tasks"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestRunMigrationsRequiresOpenDatabase(t *testing.T) {
	Close()
	if err := RunMigrations(); err == nil {
		t.Fatal("expected error when database is not open")
	}
}
