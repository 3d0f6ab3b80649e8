package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"imobdesk/server/internal/feed"
	"imobdesk/server/internal/models"
)

type Database struct {
	db   *sql.DB
	feed *feed.LeadFeed
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// SetFeed attaches the change feed; lead mutations publish to it
func (d *Database) SetFeed(f *feed.LeadFeed) {
	d.feed = f
}

// notify pushes a row-level event if a feed is attached. Feed saturation
// is not an error for the caller: the mutation already committed, and
// subscribers recover on their next full load.
func (d *Database) notify(event models.LeadEvent) {
	if d.feed == nil {
		return
	}
	_ = d.feed.Publish(event)
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}
