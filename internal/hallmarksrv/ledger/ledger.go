// Package ledger anchors hallmark content hashes on the Solana blockchain and
// reads them back for verification. An anchor is a memo-only transaction
// carrying the hash; its signature becomes the hallmark's permanent ledger
// reference.
package ledger

import (
	"context"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/config"
)

// AnchorResult describes a confirmed anchor transaction.
type AnchorResult struct {
	TxRef       string
	Slot        int64
	Network     string
	ConfirmedAt time.Time
}

// VerifyResult is the ledger-side view of an anchored hallmark. HashMatches
// is nil when the transaction carries no readable memo hash.
type VerifyResult struct {
	Exists       bool
	Confirmed    bool
	Slot         int64
	EmbeddedHash string
	HashMatches  *bool
}

type Client interface {
	// Enabled reports whether an operator key is configured. When false,
	// Anchor returns ErrLedgerDisabled and issuance proceeds unanchored.
	Enabled() bool
	Network() string
	// Anchor submits a memo transaction carrying the content hash and waits
	// for confirmation within the configured timeout.
	Anchor(ctx context.Context, contentHash string) (*AnchorResult, apperrors.Error)
	// FetchAndVerify retrieves the anchor transaction and compares its
	// embedded hash against expectedHash.
	FetchAndVerify(ctx context.Context, txRef string, expectedHash string) (*VerifyResult, apperrors.Error)
	Health(ctx context.Context) bool
}

// New builds a client from configuration. Without an operator key the client
// is read-only for verification and refuses to anchor.
func New(cfg *config.LedgerParam) (Client, apperrors.Error) {
	c := &solanaClient{
		network:       cfg.Network,
		endpoint:      cfg.RPCEndpoint,
		fallback:      cfg.FallbackEndpoint,
		anchorTimeout: cfg.AnchorTimeoutDuration(),
		verifyTimeout: cfg.VerifyTimeoutDuration(),
		pollInterval:  cfg.PollIntervalDuration(),
	}
	if cfg.OperatorKey != "" {
		key, err := ParseOperatorKey(cfg.OperatorKey)
		if err != nil {
			return nil, err
		}
		c.operatorKey = key
	}
	return c, nil
}
