package models

import "time"

/*
   Column   |          Type           | Collation | Nullable | Default
------------+-------------------------+-----------+----------+---------
 space      | character varying(64)   |           | not null |
 value      | bigint                  |           | not null |
 updated_at | timestamptz             |           | not null | now()
Indexes:
    "serial_counters_pkey" PRIMARY KEY, btree (space)
*/

// SerialCounter holds the last issued value of one numbering space.
// Rows are only ever touched under a row lock; the counter is seeded
// from the highest persisted serial when the row does not exist yet.
type SerialCounter struct {
	Space     string    `db:"space"`
	Value     int64     `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
