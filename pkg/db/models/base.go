package models

import "github.com/google/uuid"

// assignID gives rows a v4 id before insert. Tables carry no database-side
// default so the same migrations serve Postgres and SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
