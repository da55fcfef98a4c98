// Package canonhash computes the content hash of a hallmark. The payload is
// serialized to JSON, canonicalized per RFC 8785 and hashed with SHA-256, so
// a verifier can reproduce the exact digest from the hallmark fields alone.
package canonhash

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/anand-gl/jsoncanonicalizer"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Payload is the canonical hash input. Optional fields marked omitempty are
// excluded entirely when unset; an absent field and an empty field hash
// identically, which keeps the digest stable across clients.
type Payload struct {
	SerialNumber string            `json:"serialNumber"`
	AssetType    string            `json:"assetType"`
	AssetID      string            `json:"assetId,omitempty"`
	PrincipalID  string            `json:"principalId,omitempty"`
	IssuedAt     string            `json:"issuedAt"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewPayload builds the hash input from hallmark fields. The issuance time is
// rendered in RFC 3339 UTC so the digest does not depend on the server zone.
func NewPayload(serialNumber, assetType, assetID, principalID string, issuedAt time.Time, metadata map[string]string) Payload {
	return Payload{
		SerialNumber: serialNumber,
		AssetType:    assetType,
		AssetID:      assetID,
		PrincipalID:  principalID,
		IssuedAt:     issuedAt.UTC().Format(time.RFC3339),
		Metadata:     metadata,
	}
}

// Hash returns the lowercase hex SHA-256 of the canonicalized payload.
func Hash(p Payload) (string, apperrors.Error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", apperrors.New("failed to serialize hash payload").Err(err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return "", apperrors.New("failed to canonicalize hash payload").Err(err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
