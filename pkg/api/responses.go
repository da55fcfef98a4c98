package api

import "time"

// HallmarkRsp is the wire view of a hallmark.
type HallmarkRsp struct {
	SerialNumber      string            `json:"serialNumber"`
	AssetType         string            `json:"assetType"`
	AssetID           string            `json:"assetId,omitempty"`
	AssetName         string            `json:"assetName,omitempty"`
	PrincipalID       string            `json:"principalId,omitempty"`
	IssuedBy          string            `json:"issuedBy"`
	IsCompanyScoped   bool              `json:"isCompanyScoped"`
	ContentHash       string            `json:"contentHash"`
	Status            string            `json:"status"`
	LedgerTxRef       string            `json:"ledgerTxRef,omitempty"`
	LedgerSlot        int64             `json:"ledgerSlot,omitempty"`
	LedgerNetwork     string            `json:"ledgerNetwork,omitempty"`
	LedgerConfirmedAt *time.Time        `json:"ledgerConfirmedAt,omitempty"`
	VerificationCount int               `json:"verificationCount"`
	LastVerifiedAt    *time.Time        `json:"lastVerifiedAt,omitempty"`
	ExpiresAt         *time.Time        `json:"expiresAt,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	IssuedAt          time.Time         `json:"issuedAt"`
}

// LedgerCheckRsp is the ledger side of a verification.
type LedgerCheckRsp struct {
	Exists       bool   `json:"exists"`
	Confirmed    bool   `json:"confirmed"`
	Slot         int64  `json:"slot,omitempty"`
	EmbeddedHash string `json:"embeddedHash,omitempty"`
	HashMatches  *bool  `json:"hashMatches,omitempty"`
}

// VerifyHallmarkRsp always carries a verdict; a failed or missing hallmark is
// reported here, not as an HTTP error.
type VerifyHallmarkRsp struct {
	SerialNumber string          `json:"serialNumber"`
	Verdict      string          `json:"verdict"`
	Message      string          `json:"message"`
	Hallmark     *HallmarkRsp    `json:"hallmark,omitempty"`
	Ledger       *LedgerCheckRsp `json:"ledger,omitempty"`
}

type HallmarkEventRsp struct {
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType"`
	RequesterIP string    `json:"requesterIp,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ProfileRsp struct {
	PrincipalID               string     `json:"principalId"`
	HallmarkPrefix            string     `json:"hallmarkPrefix"`
	Tier                      string     `json:"tier"`
	IsMinted                  bool       `json:"isMinted"`
	MintedAt                  *time.Time `json:"mintedAt,omitempty"`
	MintTxRef                 string     `json:"mintTxRef,omitempty"`
	DocumentsIssuedThisPeriod int        `json:"documentsIssuedThisPeriod"`
	TotalDocumentsIssued      int        `json:"totalDocumentsIssued"`
	PeriodResetAt             *time.Time `json:"periodResetAt,omitempty"`
	HasAvatar                 bool       `json:"hasAvatar"`
	QuotaLimit                int        `json:"quotaLimit"`
	QuotaRemaining            int        `json:"quotaRemaining"`
	CreatedAt                 time.Time  `json:"createdAt"`
}

type AppVersionRsp struct {
	Version    string       `json:"version"`
	Notes      string       `json:"notes,omitempty"`
	IsCurrent  bool         `json:"isCurrent"`
	ReleasedAt time.Time    `json:"releasedAt"`
	Hallmark   *HallmarkRsp `json:"hallmark,omitempty"`
}

type ResetPeriodsRsp struct {
	ProfilesReset int `json:"profilesReset"`
}

// QuotaExceededRsp is the body of a quota refusal so clients can display the
// tier allowance, not just a message.
type QuotaExceededRsp struct {
	Error     string `json:"error"`
	Tier      string `json:"tier"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

type ServerVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	APIVersion    string `json:"apiVersion"`
}
