package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
// Date and time columns are stored as ISO-8601 text so rows serialize to
// snapshot records without any per-field conversion.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER NOT NULL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		role TEXT NOT NULL DEFAULT 'clinician',
		active INTEGER NOT NULL DEFAULT 1,
		last_login TEXT,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS students (
		id INTEGER NOT NULL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		preferred_name TEXT,
		pronouns TEXT,
		grade_level TEXT,
		monthly_services INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		anonymous_id TEXT UNIQUE,
		anonymized INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS goals (
		id INTEGER NOT NULL PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students(id),
		description TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		target_date TEXT,
		completion_criteria TEXT,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS objectives (
		id INTEGER NOT NULL PRIMARY KEY,
		goal_id INTEGER NOT NULL REFERENCES goals(id),
		description TEXT NOT NULL,
		accuracy_target TEXT,
		notes TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER NOT NULL PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students(id),
		session_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		session_type TEXT NOT NULL DEFAULT 'Individual',
		status TEXT NOT NULL DEFAULT 'Scheduled',
		location TEXT,
		notes TEXT,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS trial_logs (
		id INTEGER NOT NULL PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students(id),
		objective_id INTEGER REFERENCES objectives(id),
		session_date TEXT NOT NULL,
		independent INTEGER NOT NULL DEFAULT 0,
		minimal_support INTEGER NOT NULL DEFAULT 0,
		moderate_support INTEGER NOT NULL DEFAULT 0,
		maximal_support INTEGER NOT NULL DEFAULT 0,
		incorrect INTEGER NOT NULL DEFAULT 0,
		session_notes TEXT,
		environmental_factors TEXT,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS soap_notes (
		id INTEGER NOT NULL PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students(id),
		session_id INTEGER REFERENCES sessions(id),
		session_date TEXT NOT NULL,
		subjective TEXT,
		objective TEXT,
		assessment TEXT,
		plan TEXT,
		clinician_signature TEXT,
		anonymized INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
