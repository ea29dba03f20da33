// Package accounts manages the users document.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sweetshop/internal/models"
	"sweetshop/internal/store"
	"sweetshop/internal/xmldoc"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUsernameTaken           = errors.New("username already exists")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrMissingFields           = errors.New("all fields are required")
	ErrCurrentPasswordRequired = errors.New("current password is required to change password")
	ErrPasswordMismatch        = errors.New("new passwords do not match")
	ErrWrongPassword           = errors.New("current password is incorrect")
)

// CustomerRole is the role given to self-registered users.
const CustomerRole = "2"

type Registration struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

type ProfileUpdate struct {
	Email           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

type Service struct {
	store *store.Store
	cost  int
	now   func() time.Time
}

func New(s *store.Store) *Service {
	return &Service{store: s, cost: bcrypt.DefaultCost, now: time.Now}
}

func (s *Service) FindByID(ctx context.Context, id string) (models.User, error) {
	return s.find(ctx, "id", id)
}

func (s *Service) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.find(ctx, "username", username)
}

func (s *Service) find(ctx context.Context, field, value string) (models.User, error) {
	return store.Read(ctx, s.store, store.Users, func(root xmldoc.M) (models.User, error) {
		for _, rec := range userRecords(root) {
			if value != "" && rec.Text(field) == value {
				return userFromRecord(rec), nil
			}
		}
		return models.User{}, fmt.Errorf("%w: %s %s", ErrUserNotFound, field, value)
	})
}

// Register appends a new customer. Ids are sequential: one more than the
// number of users already stored.
func (s *Service) Register(ctx context.Context, r Registration) (models.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.Username == "" || r.Password == "" || r.Email == "" || r.FirstName == "" || r.LastName == "" {
		return models.User{}, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	return store.WithDocument(ctx, s.store, store.Users, func(root xmldoc.M) (models.User, bool, error) {
		list := root.Ensure("userList")
		users := list.Records("user")
		for _, rec := range users {
			if rec.Text("username") == r.Username {
				return models.User{}, false, ErrUsernameTaken
			}
		}

		user := models.User{
			ID:           strconv.Itoa(len(users) + 1),
			Username:     r.Username,
			PasswordHash: string(hash),
			Email:        r.Email,
			RoleID:       CustomerRole,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			Created:      s.now().UTC().Format(time.RFC3339),
		}
		list.SetRecords("user", append(users, userToRecord(user)))
		return user, true, nil
	})
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	user, err := s.FindByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile sets the user's email and, when a new password is given,
// replaces the password after checking the current one.
func (s *Service) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (models.User, error) {
	if u.NewPassword != "" {
		if u.CurrentPassword == "" {
			return models.User{}, ErrCurrentPasswordRequired
		}
		if u.NewPassword != u.ConfirmPassword {
			return models.User{}, ErrPasswordMismatch
		}
	}

	return store.WithDocument(ctx, s.store, store.Users, func(root xmldoc.M) (models.User, bool, error) {
		list := root.Map("userList")
		users := list.Records("user")
		var rec xmldoc.M
		for _, candidate := range users {
			if candidate.Text("id") == userID {
				rec = candidate
				break
			}
		}
		if rec == nil {
			return models.User{}, false, fmt.Errorf("%w: id %s", ErrUserNotFound, userID)
		}

		user := userFromRecord(rec)
		if email := strings.TrimSpace(u.Email); email != "" {
			user.Email = email
		}
		if u.NewPassword != "" {
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(u.CurrentPassword)) != nil {
				return models.User{}, false, ErrWrongPassword
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(u.NewPassword), s.cost)
			if err != nil {
				return models.User{}, false, fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = string(hash)
		}

		rec["email"] = user.Email
		rec["password"] = user.PasswordHash
		list.SetRecords("user", users)
		return user, true, nil
	})
}

func userRecords(root xmldoc.M) []xmldoc.M {
	return root.Map("userList").Records("user")
}

func userFromRecord(rec xmldoc.M) models.User {
	return models.User{
		ID:           rec.Text("id"),
		Username:     rec.Text("username"),
		PasswordHash: rec.Text("password"),
		Email:        rec.Text("email"),
		RoleID:       rec.Text("roleId"),
		FirstName:    rec.Text("firstName"),
		LastName:     rec.Text("lastName"),
		Created:      rec.Text("created"),
	}
}

func userToRecord(u models.User) xmldoc.M {
	return xmldoc.M{
		"id":        u.ID,
		"username":  u.Username,
		"password":  u.PasswordHash,
		"email":     u.Email,
		"roleId":    u.RoleID,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"created":   u.Created,
	}
}
