// Package db holds the post dataset in an in-memory SQLite database. The
// database is rebuilt from the dataset on every start and never written to
// afterwards.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/diamondburned/postlist/server/dataset"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mattn/go-sqlite3"
)

var migrations = []string{`
	CREATE TABLE posts (
		ord          INTEGER PRIMARY KEY, -- dataset order
		id           TEXT    NOT NULL UNIQUE,
		title        TEXT    NOT NULL,
		publishdate  TEXT    NOT NULL, -- RFC 3339 or empty
		summary      TEXT    NOT NULL,
		authorname   TEXT    NOT NULL,
		authoravatar TEXT             -- NULL if none
	);

	CREATE TABLE postcategories (
		postid     TEXT    NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		categoryid TEXT    NOT NULL,
		name       TEXT    NOT NULL,
		PRIMARY KEY (postid, position)
	);
`}

type DBConfig struct {
	// DatasetPath is the JSON or YAML dataset to serve. The embedded dataset is
	// used if empty.
	DatasetPath string `toml:"datasetPath"`
}

func NewConfig() DBConfig {
	return DBConfig{}
}

func (c *DBConfig) Validate() error {
	return nil
}

type Database struct {
	*sqlx.DB
	Config DBConfig
}

// NewDatabase loads the configured dataset into a fresh database.
func NewDatabase(config DBConfig) (*Database, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	set, err := dataset.Load(config.DatasetPath)
	if err != nil {
		return nil, err
	}

	return NewDatabaseFromSet(set)
}

// NewDatabaseFromSet creates a database holding exactly the given dataset.
func NewDatabaseFromSet(set dataset.Dataset) (*Database, error) {
	d, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open sqlite3 db")
	}

	// Every connection to :memory: is its own database, so there must only
	// ever be one.
	d.SetMaxOpenConns(1)
	d.SetConnMaxLifetime(0)

	db := &Database{DB: d}

	if err := db.migrate(set); err != nil {
		d.Close()
		return nil, err
	}

	return db, nil
}

func (d *Database) migrate(set dataset.Dataset) error {
	v, err := d.userVersion()
	if err != nil {
		return errors.Wrap(err, "Failed to get user_version pragma")
	}

	tx, err := d.DB.Beginx()
	if err != nil {
		return errors.Wrap(err, "Failed to start a transaction for migrations")
	}
	defer tx.Rollback()

	for i := v; i < len(migrations); i++ {
		if _, err := tx.Exec(migrations[i]); err != nil {
			return errors.Wrapf(err, "Failed to migrate at step %d", i)
		}
	}

	if err := setUserVersion(tx, len(migrations)); err != nil {
		return errors.Wrap(err, "Failed to save user_version pragma")
	}

	for i, post := range set.Posts {
		if err := insertPost(tx, i, post); err != nil {
			return errors.Wrapf(err, "Failed to seed post %q", post.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "Failed to save migration changes")
	}

	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) userVersion() (int, error) {
	var version int
	return version, d.QueryRow("PRAGMA user_version").Scan(&version)
}

func setUserVersion(tx *sqlx.Tx, v int) error {
	_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v))
	return err
}

// Transaction is a read transaction over the dataset.
type Transaction struct {
	*sqlx.Tx
}

type TxHandler = func(*Transaction) error

// Acquire runs fn inside a transaction. The transaction is always rolled back
// since nothing is ever written after seeding.
func (d *Database) Acquire(ctx context.Context, fn TxHandler) error {
	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Failed to begin transaction")
	}
	defer tx.Rollback()

	return fn(&Transaction{tx})
}

func errIsConstraint(err error) bool {
	if err != nil {
		sqlerr := sqlite3.Error{}

		if errors.As(err, &sqlerr) && sqlerr.Code == sqlite3.ErrConstraint {
			return true
		}
	}

	return false
}

func errIsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
