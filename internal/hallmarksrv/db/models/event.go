package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
)

type HallmarkEventType string

const (
	EventIssued   HallmarkEventType = "issued"
	EventVerified HallmarkEventType = "verified"
	EventRevoked  HallmarkEventType = "revoked"
)

/*
    Column    |          Type           | Collation | Nullable | Default
--------------+-------------------------+-----------+----------+---------
 event_id     | character varying(32)   |           | not null |
 hallmark_id  | uuid                    |           | not null |
 event_type   | character varying(16)   |           | not null |
 data         | jsonb                   |           |          |
 requester_ip | character varying(64)   |           |          |
 requester_ua | character varying(512)  |           |          |
 created_at   | timestamptz             |           | not null | now()
Indexes:
    "hallmark_events_pkey" PRIMARY KEY, btree (event_id)
    "idx_hallmark_events_hallmark" btree (hallmark_id, created_at)
Foreign-key constraints:
    "hallmark_events_hallmark_id_fkey" FOREIGN KEY (hallmark_id) REFERENCES hallmarks(id) ON DELETE CASCADE
*/

// HallmarkEvent is an append-only audit trail entry. Rows are never updated or deleted.
type HallmarkEvent struct {
	EventID     string            `db:"event_id"`
	HallmarkID  uuid.UUID         `db:"hallmark_id"`
	EventType   HallmarkEventType `db:"event_type"`
	Data        pgtype.JSONB      `db:"data"`
	RequesterIP string            `db:"requester_ip"`
	RequesterUA string            `db:"requester_ua"`
	CreatedAt   time.Time         `db:"created_at"`
}
