package store

import (
	"fmt"
)

const currentSchemaVersion = 2

// RunMigrations applies any pending database migrations
func (s *Store) RunMigrations() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version < 2 {
		if err := s.migrateToV2(); err != nil {
			return fmt.Errorf("migration to v2 failed: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, 1 if not set
func (s *Store) getSchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 1) FROM shopsync_schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrateToV2 records the target instance of each run
func (s *Store) migrateToV2() error {
	var colCount int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('runs')
		WHERE name='target_url'
	`).Scan(&colCount)
	if err != nil {
		return err
	}
	if colCount == 0 {
		if _, err := s.db.Exec(`ALTER TABLE runs ADD COLUMN target_url TEXT`); err != nil {
			return err
		}
	}

	_, err = s.db.Exec("INSERT OR REPLACE INTO shopsync_schema_version (version) VALUES (?)", currentSchemaVersion)
	return err
}
