package credentials

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, Verify("secret123", hash))
	assert.False(t, Verify("secret124", hash))
	assert.False(t, Verify("secret123", "not-a-hash"))
}

func TestHashIsSaltedPerCall(t *testing.T) {
	first, err := Hash("secret123")
	require.NoError(t, err)
	second, err := Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("secret123", first))
	assert.True(t, Verify("secret123", second))
}

func TestIssueToken(t *testing.T) {
	token, err := IssueToken()
	require.NoError(t, err)

	assert.Len(t, token, TokenBytes*2)
	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, TokenBytes)

	other, err := IssueToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
