package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/engaja/internal/domain"
)

func TestAuthRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret", 0)
	user := domain.User{ID: "u-42", Role: domain.RoleExecutive}

	token, err := auth.IssueToken(context.Background(), user)
	require.NoError(t, err)

	result, err := auth.AuthJwt(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", result.UserID)
	assert.Equal(t, domain.RoleExecutive, result.Role)
}

func TestAuthRejectsForeignToken(t *testing.T) {
	token, err := NewAuthService("a", 0).IssueToken(context.Background(), domain.User{ID: "u", Role: domain.RoleCitizen})
	require.NoError(t, err)

	_, err = NewAuthService("b", 0).AuthJwt(context.Background(), token)
	assert.Error(t, err)
}
