package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"crewops_backend/internal/models"
	"crewops_backend/pkg/utils"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeAuthRepo) {
	t.Helper()
	if err := utils.InitJWT("test-secret", 15*time.Minute, time.Hour); err != nil {
		t.Fatalf("InitJWT: %v", err)
	}
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := newFakeAuthRepo()
	return NewAuthService(users, db), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, err := svc.Register(RegisterRequest{Username: "alex", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != models.RoleEmployee {
		t.Errorf("default role = %s, want %s", user.Role, models.RoleEmployee)
	}

	resp, err := svc.Login(models.Credentials{Username: "alex", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("login should issue both tokens")
	}
	claims, err := utils.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleEmployee {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := svc.Login(models.Credentials{Username: "alex", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(models.Credentials{Username: "nobody", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	if _, err := svc.Register(RegisterRequest{Username: "alex", Password: "pw-long-enough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(RegisterRequest{Username: "alex", Password: "pw-long-enough"}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("duplicate username error = %v, want ErrUsernameExists", err)
	}
	if _, err := svc.Register(RegisterRequest{Username: "bree", Password: "pw-long-enough", Role: "Wizard"}); !errors.Is(err, ErrUserValidation) {
		t.Fatalf("bad role error = %v, want ErrUserValidation", err)
	}
	if _, err := svc.Register(RegisterRequest{Username: "   ", Password: "pw-long-enough"}); !errors.Is(err, ErrUserValidation) {
		t.Fatalf("blank username error = %v, want ErrUserValidation", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, users := newAuthFixture(t)

	user, err := svc.Register(RegisterRequest{Username: "casey", Password: "pw-long-enough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	users.users[user.ID].IsActive = false

	if _, err := svc.Login(models.Credentials{Username: "casey", Password: "pw-long-enough"}); !errors.Is(err, ErrUserInactive) {
		t.Fatalf("inactive login error = %v, want ErrUserInactive", err)
	}
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthFixture(t)

	if _, err := svc.Register(RegisterRequest{Username: "drew", Password: "pw-long-enough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	resp, err := svc.Login(models.Credentials{Username: "drew", Password: "pw-long-enough"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := svc.Refresh(resp.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("refresh should issue a new access token")
	}
	if _, err := svc.Refresh("not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad token error = %v, want ErrInvalidCredentials", err)
	}
}
