package models

// UserRole represents the roles known to the gym platform.
type UserRole string

const (
	RoleOwner   UserRole = "OWNER"
	RoleAdmin   UserRole = "ADMIN"
	RoleStaff   UserRole = "STAFF"
	RoleTrainer UserRole = "TRAINER"
	RoleMember  UserRole = "MEMBER"
)

// UserStatus marks whether an account may sign in.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// User is a staff member or participant of the gym.
type User struct {
	ID       int64      `json:"id"`
	FullName string     `json:"full_name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Phone    string     `json:"phone"`
	Role     UserRole   `json:"role" validate:"required,oneof=OWNER ADMIN STAFF TRAINER MEMBER"`
	Status   UserStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
	// Password is only sent on create; the backend never returns it.
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (u User) RecordID() int64 { return u.ID }

// SearchFields covers full name and email.
func (u User) SearchFields() []string {
	return []string{u.FullName, u.Email}
}

func (u User) FilterValue(field string) string {
	switch field {
	case "role":
		return string(u.Role)
	case "status":
		return string(u.Status)
	}
	return ""
}

func (u User) EditableFields() map[string]any {
	return map[string]any{
		"full_name": u.FullName,
		"email":     u.Email,
		"phone":     u.Phone,
		"role":      string(u.Role),
		"status":    string(u.Status),
	}
}

// UserInfo is the display projection cached by the user directory.
type UserInfo struct {
	ID       int64    `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}

// Info projects a user onto its display fields.
func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}
