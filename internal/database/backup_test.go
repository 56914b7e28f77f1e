package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)

	logger := zerolog.New(io.Discard)
	dir := filepath.Join(t.TempDir(), "backups")
	svc := NewBackupService(db, config.BackupConfig{Enabled: true, StoragePath: dir, RetentionDays: 7}, &logger)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC) }

	path, err := svc.PerformBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cumma_20260504_030201.db"), path)

	snapshot, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer snapshot.Close()

	var users int
	require.NoError(t, snapshot.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Equal(t, 2, users)
}

func TestCleanupOldBackups(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()
	svc := NewBackupService(db, config.BackupConfig{StoragePath: dir, RetentionDays: 7}, &logger)

	now := time.Now()
	files := map[string]time.Time{
		"cumma_old.db":   now.AddDate(0, 0, -10),
		"cumma_fresh.db": now.AddDate(0, 0, -1),
		"unrelated.db":   now.AddDate(0, 0, -30),
	}
	for name, mtime := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(p, mtime, mtime))
	}

	assert.Equal(t, 1, svc.CleanupOldBackups())
	assert.NoFileExists(t, filepath.Join(dir, "cumma_old.db"))
	assert.FileExists(t, filepath.Join(dir, "cumma_fresh.db"))
	assert.FileExists(t, filepath.Join(dir, "unrelated.db"))

	svc.config.RetentionDays = 0
	assert.Equal(t, 0, svc.CleanupOldBackups())
}

func TestBackupStartDisabledReturns(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.New(io.Discard)
	svc := NewBackupService(db, config.BackupConfig{Enabled: false}, &logger)

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled backup service should return immediately")
	}
}

func TestBackupStartRunsOnceAndStops(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()
	svc := NewBackupService(db, config.BackupConfig{Enabled: true, Schedule: "1h", StoragePath: dir}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		entries, _ := os.ReadDir(dir)
		return len(entries) >= 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("backup service did not stop")
	}
}
