package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"library-loans/internal/core/cache"
	"library-loans/internal/domain"
	"library-loans/internal/repo"
	"library-loans/pkg/utils"
)

type Directory struct {
	users    domain.UserRepository
	cache    *cache.Cache // 可为 nil
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewDirectory(users domain.UserRepository, l *zap.Logger) *Directory {
	if l == nil {
		l = zap.NewNop()
	}
	return &Directory{users: users, log: l}
}

// WithCache 用户注册后不可变，GetUser 可以走读穿缓存
func (d *Directory) WithCache(c *cache.Cache, ttl time.Duration) *Directory {
	d.cache, d.cacheTTL = c, ttl
	return d
}

func (d *Directory) RegisterUser(ctx context.Context, in domain.NewUser) (int64, error) {
	if blank(in.Name) || blank(in.Username) || in.Credential == "" {
		return 0, fmt.Errorf("%w: name, username and credential are required", domain.ErrInvalidInput)
	}
	if tooLong(in.Name, domain.MaxNameLen) {
		return 0, fmt.Errorf("%w: name longer than %d", domain.ErrInvalidInput, domain.MaxNameLen)
	}
	if tooLong(in.Username, domain.MaxUsernameLen) {
		return 0, fmt.Errorf("%w: username longer than %d", domain.ErrInvalidInput, domain.MaxUsernameLen)
	}
	if !in.Role.Valid() {
		return 0, fmt.Errorf("%w: role %q", domain.ErrInvalidInput, in.Role)
	}
	digest, err := utils.HashPassword(in.Credential)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return 0, fmt.Errorf("%w: credential too long", domain.ErrInvalidInput)
	}
	if err != nil {
		return 0, err
	}
	u := &domain.User{
		Name:       strings.TrimSpace(in.Name),
		Role:       in.Role,
		Username:   strings.TrimSpace(in.Username),
		Credential: digest,
	}
	if err := d.users.Create(ctx, u); err != nil {
		if repo.IsDupKey(err) {
			return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, u.Username)
		}
		return 0, storeErr(err)
	}
	d.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return u.ID, nil
}

func (d *Directory) Authenticate(ctx context.Context, username, credential string) (domain.Identity, error) {
	u, err := d.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return domain.Identity{}, storeErr(err)
	}
	if u == nil || !utils.CheckPassword(credential, u.Credential) {
		return domain.Identity{}, domain.ErrAuthFailed
	}
	return domain.Identity{UserID: u.ID, Role: u.Role}, nil
}

func (d *Directory) GetUser(ctx context.Context, id int64) (domain.User, error) {
	load := func(ctx context.Context) (*domain.User, error) {
		u, err := d.users.FindByID(ctx, id)
		if err != nil {
			return nil, storeErr(err)
		}
		if u == nil {
			return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
		}
		return u, nil
	}
	var (
		u   *domain.User
		err error
	)
	if d.cache != nil {
		u, err = cache.GetOrLoadJSON(d.cache, ctx, fmt.Sprintf("user:%d", id), d.cacheTTL, load)
	} else {
		u, err = load(ctx)
	}
	if err != nil {
		return domain.User{}, err
	}
	if u == nil {
		return domain.User{}, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return *u, nil
}
