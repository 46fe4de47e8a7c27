// File: internal/services/user_services/auth_service_test.go
package user_services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/huddlehq/huddle/internal/domain"
	userrepo "github.com/huddlehq/huddle/internal/repository/user"
	"github.com/huddlehq/huddle/internal/services"
	"github.com/huddlehq/huddle/internal/services/user_services"
)

const testAdminEmail = "admin@example.com"

func newUserService(t *testing.T) *user_services.UserService {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "auth_test.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := userrepo.NewGormUserRepository(db)
	return user_services.NewUserService(repo, "test-secret-key", testAdminEmail, &services.NoOpLogger{})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice_w", "alice@example.com", "Alice", "sup3rsecret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.IsAdmin {
		t.Fatalf("regular email should not get the admin flag")
	}
	if created.Password == "sup3rsecret" {
		t.Fatalf("password stored in plain text")
	}

	account, token, err := svc.Login(ctx, "alice_w", "sup3rsecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if account.ID != created.ID || token == "" {
		t.Fatalf("unexpected login result: id=%d token=%q", account.ID, token)
	}

	userID, err := svc.ValidateJWTToken(token)
	if err != nil {
		t.Fatalf("ValidateJWTToken failed: %v", err)
	}
	if userID != created.ID {
		t.Fatalf("token resolved to user %d, want %d", userID, created.ID)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob_the", "bob@example.com", "Bob", "correcthorse"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "bob_the", "wronghorse"); err == nil {
		t.Fatalf("expected login failure with wrong password")
	}
	if _, _, err := svc.Login(ctx, "nobody99", "correcthorse"); err == nil {
		t.Fatalf("expected login failure for unknown user")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@b.com", "longenough"},
		{"bad characters", "has space", "a@b.com", "longenough"},
		{"bad email", "charlie1", "not-an-email", "longenough"},
		{"short password", "charlie1", "c@d.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.username, tc.email, "x", tc.password); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dupe_user", "one@example.com", "One", "longenough"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "dupe_user", "two@example.com", "Two", "longenough"); err == nil {
		t.Fatalf("expected duplicate username rejection")
	}
}

func TestAdminEmailGetsAdminFlag(t *testing.T) {
	svc := newUserService(t)

	created, err := svc.Register(context.Background(), "head_admin", testAdminEmail, "Admin", "longenough")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !created.IsAdmin {
		t.Fatalf("admin email should set the admin flag")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "daisy_01", "daisy@example.com", "Daisy", "longenough")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, created.ID, "Daisy D.", "https://cdn.example.com/d.png")
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.DisplayName != "Daisy D." || updated.AvatarURL != "https://cdn.example.com/d.png" {
		t.Fatalf("profile not updated: %+v", updated)
	}

	// Empty fields leave existing values alone.
	unchanged, err := svc.UpdateProfile(ctx, created.ID, "", "")
	if err != nil {
		t.Fatalf("UpdateProfile with empty fields failed: %v", err)
	}
	if unchanged.DisplayName != "Daisy D." {
		t.Fatalf("empty update overwrote display name: %+v", unchanged)
	}
}
