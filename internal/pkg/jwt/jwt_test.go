package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, time.Minute)

	tokenString, expiresAt, err := svc.GenerateAccessToken("emp-1", user.RoleAdmin)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	actor, err := ActorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, user.Actor{EmployeeID: "emp-1", Role: user.RoleAdmin}, actor)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 2*time.Minute)

	token, expiresIn, err := svc.GenerateSSEToken("emp-2")
	require.NoError(t, err)
	assert.Equal(t, 120, expiresIn)

	id, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-2", id)

	access, _, err := svc.GenerateAccessToken("emp-2", user.RoleEmployee)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err, "access tokens must not open streams")

	other := NewJWTService("other-secret", time.Hour, time.Minute)
	_, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestActorFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
		ok     bool
	}{
		{"valid employee", map[string]interface{}{"type": "access", "employee_id": "e", "role": "employee"}, true},
		{"sse token", map[string]interface{}{"type": "sse", "employee_id": "e", "role": "employee"}, false},
		{"missing employee", map[string]interface{}{"type": "access", "role": "admin"}, false},
		{"unknown role", map[string]interface{}{"type": "access", "employee_id": "e", "role": "owner"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ActorFromClaims(tt.claims)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidClaims))
			}
		})
	}
}
