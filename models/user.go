package models

// User is a registered player. Identity (ID) is immutable; username,
// email and password change through explicit update endpoints only.
// The stored password is a bcrypt hash and never leaves the API.
type User struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Username  string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email     string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string  `gorm:"type:varchar(255);not null" json:"-"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}
