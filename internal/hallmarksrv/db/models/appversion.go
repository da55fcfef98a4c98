package models

import (
	"time"

	"github.com/google/uuid"
)

/*
   Column    |          Type           | Collation | Nullable |      Default
-------------+-------------------------+-----------+----------+--------------------
 id          | uuid                    |           | not null | uuid_generate_v4()
 version     | character varying(64)   |           | not null |
 notes       | text                    |           |          |
 hallmark_id | uuid                    |           | not null |
 is_current  | boolean                 |           | not null | false
 released_at | timestamptz             |           | not null | now()
Indexes:
    "app_versions_pkey" PRIMARY KEY, btree (id)
    "app_versions_version_key" UNIQUE, btree (version)
    "idx_one_current_app_version" UNIQUE, btree (is_current) WHERE is_current = true
Foreign-key constraints:
    "app_versions_hallmark_id_fkey" FOREIGN KEY (hallmark_id) REFERENCES hallmarks(id)
*/

// AppVersion is a release record pointing at a company-scoped hallmark.
// At most one row has is_current = true at any time.
type AppVersion struct {
	ID         uuid.UUID `db:"id"`
	Version    string    `db:"version"`
	Notes      string    `db:"notes"`
	HallmarkID uuid.UUID `db:"hallmark_id"`
	IsCurrent  bool      `db:"is_current"`
	ReleasedAt time.Time `db:"released_at"`
}
