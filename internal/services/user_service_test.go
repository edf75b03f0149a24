package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/lwexler/theralog-be/internal/database"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() error = %v", err)
	}
	return db
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.CreateUser("slp_admin", "admin@clinic.test", "s3cret-pass", "admin")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("ID not assigned")
	}
	if user.Username != "slp_admin" || user.Role != "admin" {
		t.Errorf("user = %+v, want slp_admin/admin", user)
	}
	if !user.Active {
		t.Error("new user not active")
	}

	// The stored hash verifies against the original password and is never
	// the plaintext.
	var hash string
	if err := db.QueryRow("SELECT password_hash FROM users WHERE id = ?", user.ID).Scan(&hash); err != nil {
		t.Fatal(err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@clinic.test", "s3cret-pass"},
		{"missing email", "slp_admin", "", "s3cret-pass"},
		{"short password", "slp_admin", "a@clinic.test", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(tt.username, tt.email, tt.password, ""); err == nil {
				t.Error("CreateUser() expected validation error")
			}
		})
	}
}

func TestCreateUserDefaultRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.CreateUser("slp_admin", "admin@clinic.test", "s3cret-pass", "")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.Role != "clinician" {
		t.Errorf("Role = %q, want clinician", user.Role)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.CreateUser("slp_admin", "a@clinic.test", "s3cret-pass", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateUser("slp_admin", "b@clinic.test", "s3cret-pass", ""); err == nil {
		t.Error("CreateUser() expected error for duplicate username")
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	created, err := svc.CreateUser("slp_admin", "admin@clinic.test", "s3cret-pass", "")
	if err != nil {
		t.Fatal(err)
	}

	found, err := svc.GetUserByUsername("slp_admin")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}

	if _, err := svc.GetUserByUsername("nobody"); err == nil {
		t.Error("GetUserByUsername(nobody) expected error")
	}
}
