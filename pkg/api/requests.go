// Package api defines the wire types of the hallmark service.
package api

import "time"

// IssueHallmarkReq is the body of both issuance endpoints. PrincipalID is
// ignored on the company endpoint; on the principal endpoint it may be
// omitted when the token already carries a principal.
type IssueHallmarkReq struct {
	AssetType   string            `json:"assetType" validate:"required,max=64"`
	AssetID     string            `json:"assetId,omitempty" validate:"max=128"`
	AssetName   string            `json:"assetName,omitempty" validate:"max=256"`
	PrincipalID string            `json:"principalId,omitempty" validate:"max=64"`
	Metadata    map[string]string `json:"metadata,omitempty" validate:"max=32,dive,max=512"`
	ExpiresAt   *time.Time        `json:"expiresAt,omitempty"`
}

type RevokeHallmarkReq struct {
	Reason string `json:"reason,omitempty" validate:"max=512"`
}

type CreateProfileReq struct {
	PrincipalID string `json:"principalId" validate:"required,max=64"`
	DisplayName string `json:"displayName" validate:"required,max=128"`
}

// MintProfileReq completes minting. Tier is optional; when present it must be
// a known subscription tier.
type MintProfileReq struct {
	MintTxRef string `json:"mintTxRef,omitempty" validate:"max=128"`
	Tier      string `json:"tier,omitempty" validate:"omitempty,oneof=starter professional enterprise"`
}

// UpdateAvatarReq carries the avatar image as standard base64.
type UpdateAvatarReq struct {
	AvatarData string `json:"avatarData" validate:"required,base64"`
}

type PublishVersionReq struct {
	Version string `json:"version" validate:"required,max=64"`
	Notes   string `json:"notes,omitempty" validate:"max=4096"`
}
