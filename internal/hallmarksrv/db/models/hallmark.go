package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
)

type HallmarkStatus string

const (
	HallmarkStatusActive  HallmarkStatus = "active"
	HallmarkStatusRevoked HallmarkStatus = "revoked"
	HallmarkStatusExpired HallmarkStatus = "expired"
)

/*
     Column         |          Type           | Collation | Nullable |      Default
--------------------+-------------------------+-----------+----------+--------------------
 id                 | uuid                    |           | not null | uuid_generate_v4()
 serial_number      | character varying(64)   |           | not null |
 prefix             | character varying(32)   |           | not null |
 asset_type         | character varying(64)   |           | not null |
 asset_id           | character varying(128)  |           |          |
 asset_name         | character varying(256)  |           |          |
 principal_id       | character varying(64)   |           |          |
 issued_by          | character varying(256)  |           | not null |
 is_company_scoped  | boolean                 |           | not null | false
 content_hash       | character(64)           |           | not null |
 status             | character varying(16)   |           | not null | 'active'
 ledger_tx_ref      | character varying(128)  |           |          |
 ledger_slot        | bigint                  |           |          |
 ledger_network     | character varying(32)   |           |          |
 ledger_confirmed_at| timestamptz             |           |          |
 verification_count | integer                 |           | not null | 0
 last_verified_at   | timestamptz             |           |          |
 expires_at         | timestamptz             |           |          |
 metadata           | jsonb                   |           |          |
 issued_at          | timestamptz             |           | not null | now()
 updated_at         | timestamptz             |           | not null | now()
Indexes:
    "hallmarks_pkey" PRIMARY KEY, btree (id)
    "hallmarks_serial_number_key" UNIQUE, btree (serial_number)
    "idx_hallmarks_prefix" btree (prefix)
    "idx_hallmarks_principal" btree (principal_id)
*/

type Hallmark struct {
	ID                uuid.UUID      `db:"id"`
	SerialNumber      string         `db:"serial_number"`
	Prefix            string         `db:"prefix"`
	AssetType         string         `db:"asset_type"`
	AssetID           string         `db:"asset_id"`
	AssetName         string         `db:"asset_name"`
	PrincipalID       string         `db:"principal_id"`
	IssuedBy          string         `db:"issued_by"`
	IsCompanyScoped   bool           `db:"is_company_scoped"`
	ContentHash       string         `db:"content_hash"`
	Status            HallmarkStatus `db:"status"`
	LedgerTxRef       string         `db:"ledger_tx_ref"`
	LedgerSlot        int64          `db:"ledger_slot"`
	LedgerNetwork     string         `db:"ledger_network"`
	LedgerConfirmedAt *time.Time     `db:"ledger_confirmed_at"`
	VerificationCount int            `db:"verification_count"`
	LastVerifiedAt    *time.Time     `db:"last_verified_at"`
	ExpiresAt         *time.Time     `db:"expires_at"`
	Metadata          pgtype.JSONB   `db:"metadata"`
	IssuedAt          time.Time      `db:"issued_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

// IsAnchored reports whether the hallmark carries a confirmed ledger anchor reference.
func (h *Hallmark) IsAnchored() bool {
	return h.LedgerTxRef != ""
}

// HallmarkFilter narrows list queries. Zero values match everything.
type HallmarkFilter struct {
	Status      HallmarkStatus
	AssetType   string
	PrincipalID string
	Query       string // matches serial number or asset name
	Limit       int
}

// HallmarkCounts aggregates totals for the stats surface.
type HallmarkCounts struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	Revoked       int `json:"revoked"`
	Expired       int `json:"expired"`
	Anchored      int `json:"anchored"`
	CompanyScoped int `json:"companyScoped"`
}
