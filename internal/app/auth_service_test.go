package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/repository"
)

type fakeTokenRevoker struct {
	revoked map[string]time.Duration
}

func newFakeTokenRevoker() *fakeTokenRevoker {
	return &fakeTokenRevoker{revoked: map[string]time.Duration{}}
}

func (r *fakeTokenRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	r.revoked[token] = ttl
	return nil
}

func newAuthTestService(t *testing.T, revoker TokenRevoker) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAuthService(repository.NewUserRepository(db), revoker, "test-secret", time.Hour)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := newAuthTestService(t, nil)

	registered, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.Token == "" {
		t.Error("expected a token on register")
	}
	if registered.User.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", registered.User.Email)
	}

	loggedIn, err := svc.Login(LoginInput{Username: "alice", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("login user id: got %d, want %d", loggedIn.User.ID, registered.User.ID)
	}
}

func TestAuthRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthTestService(t, nil)

	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "a@example.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(RegisterInput{Username: "alice", Email: "b@example.com", Password: "hunter2hunter2"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc := newAuthTestService(t, nil)

	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "a@example.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Login(LoginInput{Username: "alice", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAuthLogoutRevokesToken(t *testing.T) {
	revoker := newFakeTokenRevoker()
	svc := newAuthTestService(t, revoker)

	registered, err := svc.Register(RegisterInput{Username: "alice", Email: "a@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(context.Background(), registered.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	ttl, ok := revoker.revoked[registered.Token]
	if !ok {
		t.Fatal("token was not revoked")
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("revocation ttl out of range: %v", ttl)
	}
}

func TestAuthLogoutMalformedTokenIsNoop(t *testing.T) {
	revoker := newFakeTokenRevoker()
	svc := newAuthTestService(t, revoker)

	if err := svc.Logout(context.Background(), "garbage"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(revoker.revoked) != 0 {
		t.Error("malformed token should not reach the revoker")
	}
}
