package store

import (
	"context"

	"github.com/pkg/errors"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('admin', 'faculty', 'student')),
		fullname      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date       TEXT NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('present', 'absent')),
		marked_by  INTEGER REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS attendance_student_date_key ON attendance (student_id, date)`,
	`CREATE INDEX IF NOT EXISTS attendance_date_idx ON attendance (date)`,
	`CREATE TABLE IF NOT EXISTS marks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject    TEXT NOT NULL,
		marks      INTEGER NOT NULL,
		marked_by  INTEGER REFERENCES users(id) ON DELETE SET NULL,
		date       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS marks_student_idx ON marks (student_id, date)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		due_date   TEXT NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('pending', 'submitted'))
	)`,
	`CREATE INDEX IF NOT EXISTS assignments_student_idx ON assignments (student_id, due_date)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('admin', 'faculty', 'student')),
		fullname      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date       TEXT NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('present', 'absent')),
		marked_by  BIGINT REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS attendance_student_date_key ON attendance (student_id, date)`,
	`CREATE INDEX IF NOT EXISTS attendance_date_idx ON attendance (date)`,
	`CREATE TABLE IF NOT EXISTS marks (
		id         BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject    TEXT NOT NULL,
		marks      INTEGER NOT NULL,
		marked_by  BIGINT REFERENCES users(id) ON DELETE SET NULL,
		date       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS marks_student_idx ON marks (student_id, date)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id         BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		due_date   TEXT NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('pending', 'submitted'))
	)`,
	`CREATE INDEX IF NOT EXISTS assignments_student_idx ON assignments (student_id, due_date)`,
}

// Tables in dependency order, parents last.
var tables = []string{"assignments", "marks", "attendance", "users"}

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if d.Driver == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}

// Reset drops every table and recreates the schema.
func (d *DB) Reset(ctx context.Context) error {
	for _, table := range tables {
		if _, err := d.Client.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return errors.Wrapf(err, "drop %s", table)
		}
	}
	return d.Migrate(ctx)
}
