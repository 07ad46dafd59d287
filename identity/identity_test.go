/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/auditstore/errors"
)

func TestFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]any
		want    *Principal
		wantErr bool
	}{
		{
			name: "sub and preferred_username",
			claims: map[string]any{
				"sub":                "u1",
				"preferred_username": "alice",
				"name":               "Alice A.",
			},
			want: &Principal{Subject: "u1", Username: "alice", DisplayName: "Alice A."},
		},
		{
			name: "oid fallback for subject",
			claims: map[string]any{
				"oid":   "o1",
				"email": "bob@example.com",
			},
			want: &Principal{Subject: "o1", Username: "bob@example.com"},
		},
		{
			name: "username priority order",
			claims: map[string]any{
				"sub":                "u1",
				"email":              "low@example.com",
				"upn":                "mid",
				"preferred_username": "high",
			},
			want: &Principal{Subject: "u1", Username: "high"},
		},
		{
			name: "upn beats username and email",
			claims: map[string]any{
				"sub":      "u1",
				"email":    "low@example.com",
				"username": "mid",
				"upn":      "high",
			},
			want: &Principal{Subject: "u1", Username: "high"},
		},
		{
			name:    "missing subject",
			claims:  map[string]any{"preferred_username": "alice"},
			wantErr: true,
		},
		{
			name:    "missing username",
			claims:  map[string]any{"sub": "u1"},
			wantErr: true,
		},
		{
			name:    "non-string subject ignored",
			claims:  map[string]any{"sub": 42, "email": "a@b.c"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromClaims(tt.claims)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrMissingIdentity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                "u1",
		"preferred_username": "alice",
	})

	p, err := FromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.Subject)
	assert.Equal(t, "alice", p.Username)
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, PrincipalFrom(ctx))

	p := &Principal{Subject: "u1", Username: "alice"}
	ctx = WithPrincipal(ctx, p)
	assert.Same(t, p, PrincipalFrom(ctx))
}

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFrom(ctx))

	ctx = WithTraceID(ctx, "trace-123")
	assert.Equal(t, "trace-123", TraceIDFrom(ctx))
}

func TestEnsureTraceID(t *testing.T) {
	// Explicit id is returned verbatim.
	ctx := WithTraceID(context.Background(), "trace-123")
	assert.Equal(t, "trace-123", EnsureTraceID(ctx))

	// Untraced contexts get a generated, non-empty id.
	generated := EnsureTraceID(context.Background())
	assert.NotEmpty(t, generated)
}
