package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/auth"
)

func TestIssueAndVerify(t *testing.T) {
	v := TokenVerifier{Secret: []byte("s3cret"), Issuer: "front-desk"}
	tok, err := v.Issue("staff-7", []string{"staff"}, time.Hour, time.Now())
	require.NoError(t, err)

	p, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "staff-7", p.Subject)
	assert.True(t, p.HasRole(auth.RoleStaff))
}

func TestVerifyRejects(t *testing.T) {
	v := TokenVerifier{Secret: []byte("s3cret")}
	expired, err := v.Issue("a", nil, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := TokenVerifier{Secret: []byte("other")}.Issue("a", nil, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = TokenVerifier{}.Verify(other)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearerToken("bearer  abc "))
	assert.Equal(t, "", ExtractBearerToken("Basic abc"))
	assert.Equal(t, "", ExtractBearerToken(""))
}
