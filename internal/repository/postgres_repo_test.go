package repository

import (
	"testing"
)

// TestPostgresEntryRepo_ImplementsInterface はPostgresEntryRepoがEntryRepositoryを実装することを検証する。
func TestPostgresEntryRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresEntryRepoがEntryRepositoryを満たすことを検証
	var _ EntryRepository = (*PostgresEntryRepo)(nil)
}

// TestPostgresProjectRepo_ImplementsInterface はPostgresProjectRepoがProjectRepositoryを実装することを検証する。
func TestPostgresProjectRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresProjectRepoがProjectRepositoryを満たすことを検証
	var _ ProjectRepository = (*PostgresProjectRepo)(nil)
}
