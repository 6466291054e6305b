package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-loans/internal/domain"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("this-is-a-test-secret-with-32-bytes!"), Issuer: "library-loans", TTL: 15 * time.Minute}
}

func TestIssueAndParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue(domain.Identity{UserID: 7, Role: domain.RoleMember})
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UID)
	assert.Equal(t, domain.RoleMember, c.Role)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, domain.Identity{UserID: 7, Role: domain.RoleMember}, c.Identity())
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := newJWTer().Issue(domain.Identity{UserID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	other := newJWTer()
	other.Secret = []byte("another-secret-another-secret-123")
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	j := newJWTer()
	j.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := j.Issue(domain.Identity{UserID: 1, Role: domain.RoleMember})
	require.NoError(t, err)

	j.Now = nil
	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisRevoker(rdb)
	ctx := context.Background()

	j := newJWTer()
	tok, err := j.Issue(domain.Identity{UserID: 3, Role: domain.RoleMember})
	require.NoError(t, err)
	c, err := j.Parse(tok)
	require.NoError(t, err)

	revoked, err := r.Revoked(ctx, c)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, c))
	revoked, err = r.Revoked(ctx, c)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.TTL(r.Prefix+c.ID) > 0)
}
