package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateValidate(t *testing.T) {
	token, err := Create("u-1", "CITIZEN", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := Validate(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "CITIZEN", claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := Create("u-1", "ADMIN", "secret", time.Hour)
	require.NoError(t, err)

	_, err = Validate(token, "other")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := Create("u-1", "ADMIN", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = Validate(token, "secret")
	assert.Error(t, err)
}

func TestCreateRequiresSecret(t *testing.T) {
	_, err := Create("u-1", "ADMIN", "", time.Hour)
	assert.Error(t, err)
}
