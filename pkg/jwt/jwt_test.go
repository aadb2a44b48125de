package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := Generate("secreto", "user-1", RoleOperator, "test", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, RoleOperator, role)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := Generate("secreto", "user-1", RoleAdmin, "test", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.Error(t, err, "firma incorrecta debe fallar")
}

func TestParse_Expired(t *testing.T) {
	token, err := Generate("secreto", "user-1", RoleAdmin, "test", -1)
	require.NoError(t, err)

	_, _, err = Parse("secreto", token)
	assert.Error(t, err, "token expirado debe fallar")
}

func TestEmptySecret(t *testing.T) {
	_, err := Generate("", "u", RoleAdmin, "test", 5)
	assert.Error(t, err)
	_, _, err = Parse("", "x.y.z")
	assert.Error(t, err)
}
