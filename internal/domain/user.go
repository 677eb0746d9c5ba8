package domain

import "time"

type UserId = int64
type Email = string

type User struct {
	Id        UserId
	Email     Email
	FullName  string
	PassHash  string
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // nil = active
}

// Active reports whether the user may authenticate.
func (u *User) Active() bool {
	return u.DeletedAt == nil
}

type Credentials struct {
	Email    Email
	Password string
}

// UserPatch is a typed partial update. Nil fields are left untouched.
type UserPatch struct {
	Email    *Email
	FullName *string
	Admin    *bool
}

// Apply merges the patch into u field-by-field and bumps UpdatedAt.
func (p UserPatch) Apply(u *User, now time.Time) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Admin != nil {
		u.Admin = *p.Admin
	}
	u.UpdatedAt = now
}

// PublicUser is the projection returned to clients. Never carries the hash.
type PublicUser struct {
	Id        UserId    `json:"id"`
	Email     Email     `json:"email"`
	FullName  string    `json:"fullname"`
	Admin     bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}
