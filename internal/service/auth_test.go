package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/bdaybook/internal/errs"
	"github.com/and161185/bdaybook/internal/model"
	"github.com/and161185/bdaybook/internal/repository"
)

type fakeUserRepo struct {
	byName map[string]*model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := f.byName[u.Username]; ok {
		return errs.ErrAlreadyExists
	}
	f.byName[u.Username] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

type fakeLimiter struct {
	allowed  bool
	failures int
	blockOn  int // block when failures reach this count; 0 = never
}

func (f *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return f.allowed, 0, nil
}
func (f *fakeLimiter) Success(context.Context, string, []byte) error { return nil }
func (f *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	f.failures++
	return f.blockOn > 0 && f.failures >= f.blockOn, 0, nil
}

func newAuth(repo *fakeUserRepo, lim *fakeLimiter) *AuthServiceImpl {
	return NewAuthService(repo, []byte("test-key"), 15*time.Minute, lim)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := &fakeUserRepo{byName: map[string]*model.User{}}
	s := newAuth(repo, &fakeLimiter{allowed: true})

	id, err := s.Register(ctx, "ada", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == "" {
		t.Fatalf("want user id")
	}

	tok, u, err := s.LoginWithIP(ctx, "ada", "s3cret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.AccessToken == "" || u.Username != "ada" {
		t.Fatalf("bad login result: %+v", tok)
	}

	got, err := VerifyAccessToken(tok.AccessToken, []byte("test-key"))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.String() != id {
		t.Fatalf("token subject %s != %s", got, id)
	}
	if _, err := VerifyAccessToken(tok.AccessToken, []byte("other-key")); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized with wrong key, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()
	s := newAuth(&fakeUserRepo{byName: map[string]*model.User{}}, &fakeLimiter{allowed: true})
	if _, err := s.Register(context.Background(), "", "pw"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if _, err := s.Register(context.Background(), "ada", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestAuthService_Login_BadCredentialsIndistinguishable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := &fakeUserRepo{byName: map[string]*model.User{}}
	s := newAuth(repo, &fakeLimiter{allowed: true})

	if _, err := s.Register(ctx, "ada", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, errWrongPw := s.LoginWithIP(ctx, "ada", "nope", "::1")
	_, _, errNoUser := s.LoginWithIP(ctx, "ghost", "nope", "::1")
	if !errors.Is(errWrongPw, errs.ErrUnauthorized) || !errors.Is(errNoUser, errs.ErrUnauthorized) {
		t.Fatalf("want identical ErrUnauthorized, got %v / %v", errWrongPw, errNoUser)
	}
}

func TestAuthService_Login_RateLimited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := &fakeUserRepo{byName: map[string]*model.User{}}

	s := newAuth(repo, &fakeLimiter{allowed: false})
	if _, _, err := s.LoginWithIP(ctx, "ada", "pw", "::1"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}

	// failure threshold reached during this attempt
	s = newAuth(repo, &fakeLimiter{allowed: true, blockOn: 1})
	if _, _, err := s.LoginWithIP(ctx, "ghost", "pw", "::1"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited at threshold, got %v", err)
	}
}
