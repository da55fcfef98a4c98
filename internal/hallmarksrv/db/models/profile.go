package models

import (
	"time"
)

/*
           Column           |          Type           | Collation | Nullable | Default
----------------------------+-------------------------+-----------+----------+---------
 principal_id               | character varying(64)   |           | not null |
 hallmark_prefix            | character varying(32)   |           | not null |
 tier                       | character varying(32)   |           | not null | 'starter'
 is_minted                  | boolean                 |           | not null | false
 minted_at                  | timestamptz             |           |          |
 mint_tx_ref                | character varying(128)  |           |          |
 documents_issued_this_period | integer               |           | not null | 0
 total_documents_issued     | integer                 |           | not null | 0
 period_reset_at            | timestamptz             |           |          |
 avatar_data                | bytea                   |           |          |
 created_at                 | timestamptz             |           | not null | now()
 updated_at                 | timestamptz             |           | not null | now()
Indexes:
    "hallmark_profiles_pkey" PRIMARY KEY, btree (principal_id)
    "hallmark_profiles_prefix_key" UNIQUE, btree (hallmark_prefix)
*/

// Profile holds per-principal minting state and the numbering prefix
// assigned to the principal's serial space.
type Profile struct {
	PrincipalID               string     `db:"principal_id"`
	HallmarkPrefix            string     `db:"hallmark_prefix"`
	Tier                      string     `db:"tier"`
	IsMinted                  bool       `db:"is_minted"`
	MintedAt                  *time.Time `db:"minted_at"`
	MintTxRef                 string     `db:"mint_tx_ref"`
	DocumentsIssuedThisPeriod int        `db:"documents_issued_this_period"`
	TotalDocumentsIssued      int        `db:"total_documents_issued"`
	PeriodResetAt             *time.Time `db:"period_reset_at"`
	AvatarData                []byte     `db:"avatar_data"`
	CreatedAt                 time.Time  `db:"created_at"`
	UpdatedAt                 time.Time  `db:"updated_at"`
}
