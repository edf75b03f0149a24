package services

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account able to run administrative tooling.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(username, email, password, role string) (User, error)
	GetUserByUsername(username string) (User, error)
}

// UserService provides account bootstrap for the record store. Login and
// token flows live elsewhere; this only covers creating accounts so a fresh
// install (or a just-restored store) has an operator.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser creates a new user, hashing their password with bcrypt.
func (s *UserService) CreateUser(username, email, password, role string) (User, error) {
	if username == "" || email == "" {
		return User{}, fmt.Errorf("username and email are required")
	}
	if len(password) < 8 {
		return User{}, fmt.Errorf("password must be at least 8 characters")
	}
	if role == "" {
		role = "clinician"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)",
		username, email, string(hashedPassword), role,
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}

	return s.getUserByID(id)
}

// GetUserByUsername retrieves a single user by username.
func (s *UserService) GetUserByUsername(username string) (User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, username, email, role, active, created_at FROM users WHERE username = ?", username))
}

func (s *UserService) getUserByID(id int64) (User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, username, email, role, active, created_at FROM users WHERE id = ?", id))
}

func (s *UserService) scanUser(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.Active, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, fmt.Errorf("user not found")
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}
