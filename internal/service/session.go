package service

import (
	"context"
	"sync"

	"library-loans/internal/domain"
)

// Principal 借还操作的调用方
type Principal interface {
	Identity() (domain.Identity, bool)
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, credential string) (domain.Identity, error)
}

// Session 显式的登录状态，只在进程/请求内有效，不落库
type Session struct {
	auth Authenticator

	mu       sync.RWMutex
	identity *domain.Identity
}

func NewSession(auth Authenticator) *Session { return &Session{auth: auth} }

// NewAuthenticatedSession 由已验证的 token 声明重建会话
func NewAuthenticatedSession(id domain.Identity) *Session {
	return &Session{identity: &id}
}

func (s *Session) Login(ctx context.Context, username, credential string) error {
	if s.auth == nil {
		s.Logout()
		return domain.ErrAuthFailed
	}
	id, err := s.auth.Authenticate(ctx, username, credential)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.identity = nil
		return err
	}
	s.identity = &id
	return nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}

func (s *Session) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Identity()
	return ok
}

func (s *Session) CurrentRole() (domain.Role, bool) {
	id, ok := s.Identity()
	return id.Role, ok
}

func (s *Session) CurrentUserID() (int64, bool) {
	id, ok := s.Identity()
	return id.UserID, ok
}

// authorize 会员只能操作自己的借阅，管理员不限
func authorize(p Principal, userID int64) (domain.Identity, error) {
	id, err := whoami(p)
	if err != nil {
		return domain.Identity{}, err
	}
	if !id.IsAdmin() && id.UserID != userID {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}
