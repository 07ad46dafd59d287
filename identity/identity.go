/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/suparena/auditstore/errors"
)

// Principal is the resolved acting user for one request. It is always passed
// explicitly (usually via context), never read from process-wide state.
type Principal struct {
	// Subject is the stable external user id, taken from the "sub" claim
	// with "oid" as fallback.
	Subject string

	// Username is the human-readable account name.
	Username string

	// DisplayName is the optional friendly name ("name" claim).
	DisplayName string
}

// usernameClaims are tried in priority order when resolving a username.
var usernameClaims = []string{"preferred_username", "upn", "username", "email"}

// FromClaims resolves a Principal from a claims map. A stable subject id and
// a username are both required; either missing yields errors.ErrMissingIdentity.
func FromClaims(claims map[string]any) (*Principal, error) {
	subject := stringClaim(claims, "sub")
	if subject == "" {
		subject = stringClaim(claims, "oid")
	}
	if subject == "" {
		return nil, errors.NewMissingIdentityError("sub or oid")
	}

	var username string
	for _, claim := range usernameClaims {
		if username = stringClaim(claims, claim); username != "" {
			break
		}
	}
	if username == "" {
		return nil, errors.NewMissingIdentityError("username")
	}

	return &Principal{
		Subject:     subject,
		Username:    username,
		DisplayName: stringClaim(claims, "name"),
	}, nil
}

// FromToken resolves a Principal from a parsed JWT carrying map claims.
func FromToken(token *jwt.Token) (*Principal, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.NewMissingIdentityError("sub or oid")
	}
	return FromClaims(claims)
}

func stringClaim(claims map[string]any, name string) string {
	if v, ok := claims[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
