// Description: This file contains the context package which is used to set and retrieve data from the context.
package hmcommon

import (
	"context"
)

// ctxUserIdKeyType represents the key type for the authenticated user ID in the context.
type ctxUserIdKeyType string

const ctxUserIdKey ctxUserIdKeyType = "BrewboardHallmarkUserId"

// ctxPrincipalIdKeyType represents the key type for the acting principal ID in the context.
type ctxPrincipalIdKeyType string

const ctxPrincipalIdKey ctxPrincipalIdKeyType = "BrewboardHallmarkPrincipalId"

type ctxRequesterKeyType string

const ctxRequesterKey ctxRequesterKeyType = "BrewboardHallmarkRequester"

// Requester carries the caller metadata recorded on hallmark events.
type Requester struct {
	IP        string
	UserAgent string
}

// SetUserIdInContext sets the authenticated user ID in the provided context.
func SetUserIdInContext(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, ctxUserIdKey, userId)
}

// UserIdFromContext retrieves the authenticated user ID from the provided context.
func UserIdFromContext(ctx context.Context) string {
	if userId, ok := ctx.Value(ctxUserIdKey).(string); ok {
		return userId
	}
	return ""
}

// SetPrincipalIdInContext sets the acting principal ID in the provided context.
func SetPrincipalIdInContext(ctx context.Context, principalId string) context.Context {
	return context.WithValue(ctx, ctxPrincipalIdKey, principalId)
}

// PrincipalIdFromContext retrieves the acting principal ID from the provided context.
func PrincipalIdFromContext(ctx context.Context) string {
	if principalId, ok := ctx.Value(ctxPrincipalIdKey).(string); ok {
		return principalId
	}
	return ""
}

// SetRequesterInContext sets the caller metadata in the provided context.
func SetRequesterInContext(ctx context.Context, requester *Requester) context.Context {
	return context.WithValue(ctx, ctxRequesterKey, requester)
}

// RequesterFromContext retrieves the caller metadata from the provided context.
func RequesterFromContext(ctx context.Context) *Requester {
	if requester, ok := ctx.Value(ctxRequesterKey).(*Requester); ok {
		return requester
	}
	return nil
}
