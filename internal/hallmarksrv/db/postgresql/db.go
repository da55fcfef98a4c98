// Description: This file contains the implementation of the hallmark store interface for the PostgreSQL database.
package postgresql

import (
	"context"
	"database/sql"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dbmanager"
)

type hallmarkDb struct {
	c dbmanager.Conn
}

// NewHallmarkDb wraps a checked-out connection with the store operations.
func NewHallmarkDb(c dbmanager.Conn) *hallmarkDb {
	return &hallmarkDb{c: c}
}

func (hd *hallmarkDb) conn() *sql.Conn {
	return hd.c.Conn()
}

// Close returns the connection back to the pool.
func (hd *hallmarkDb) Close(ctx context.Context) {
	hd.c.Close(ctx)
}

const uniqueViolation = "23505"
