package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-loans/internal/domain"
)

type authStub struct {
	authenticate func(ctx context.Context, username, credential string) (domain.Identity, error)
}

func (a authStub) Authenticate(ctx context.Context, username, credential string) (domain.Identity, error) {
	return a.authenticate(ctx, username, credential)
}

func stubFor(username, credential string, id domain.Identity) authStub {
	return authStub{authenticate: func(_ context.Context, u, c string) (domain.Identity, error) {
		if u == username && c == credential {
			return id, nil
		}
		return domain.Identity{}, domain.ErrAuthFailed
	}}
}

func Test_Session_LoginLogout(t *testing.T) {
	want := domain.Identity{UserID: 7, Role: domain.RoleMember}
	s := NewSession(stubFor("ann", "pw", want))
	ctx := context.Background()

	assert.False(t, s.IsAuthenticated())
	_, ok := s.CurrentRole()
	assert.False(t, ok)

	require.NoError(t, s.Login(ctx, "ann", "pw"))
	assert.True(t, s.IsAuthenticated())
	role, ok := s.CurrentRole()
	assert.True(t, ok)
	assert.Equal(t, domain.RoleMember, role)
	uid, ok := s.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), uid)

	s.Logout()
	assert.False(t, s.IsAuthenticated())
	_, ok = s.CurrentUserID()
	assert.False(t, ok)
	// 重复登出无副作用
	s.Logout()
	assert.False(t, s.IsAuthenticated())
}

func Test_Session_FailedLoginClearsState(t *testing.T) {
	s := NewSession(stubFor("ann", "pw", domain.Identity{UserID: 1, Role: domain.RoleAdmin}))
	ctx := context.Background()
	require.NoError(t, s.Login(ctx, "ann", "pw"))

	err := s.Login(ctx, "ann", "nope")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.False(t, s.IsAuthenticated())
}

func Test_Session_Authenticated(t *testing.T) {
	s := NewAuthenticatedSession(domain.Identity{UserID: 3, Role: domain.RoleAdmin})
	id, ok := s.Identity()
	assert.True(t, ok)
	assert.True(t, id.IsAdmin())

	assert.ErrorIs(t, s.Login(context.Background(), "x", "y"), domain.ErrAuthFailed)
	assert.False(t, s.IsAuthenticated())
}

func Test_Session_ConcurrentAccess(t *testing.T) {
	s := NewSession(stubFor("ann", "pw", domain.Identity{UserID: 1, Role: domain.RoleMember}))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Login(context.Background(), "ann", "pw")
		}()
		go func() {
			defer wg.Done()
			if id, ok := s.Identity(); ok {
				assert.Equal(t, int64(1), id.UserID)
			}
			s.Logout()
		}()
	}
	wg.Wait()
}

func Test_Authorize(t *testing.T) {
	member := NewAuthenticatedSession(domain.Identity{UserID: 1, Role: domain.RoleMember})
	admin := NewAuthenticatedSession(domain.Identity{UserID: 2, Role: domain.RoleAdmin})

	_, err := authorize(member, 1)
	assert.NoError(t, err)
	_, err = authorize(member, 2)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = authorize(admin, 1)
	assert.NoError(t, err)
	_, err = authorize(NewSession(nil), 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = authorize(nil, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
