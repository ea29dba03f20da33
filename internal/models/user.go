package models

// User represents the application user account.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Email        string `json:"email"`
	RoleID       string `json:"roleId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Created      string `json:"created"`
}

// SessionUser is the part of a user carried by a login session.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   string `json:"roleId"`
}

func (u User) SessionUser() SessionUser {
	return SessionUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		RoleID:   u.RoleID,
	}
}
