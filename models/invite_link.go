package models

import "time"

// InviteLink is a time-limited join code for a private match. Codes are
// never reissued or revoked; once the window closes the code simply stops
// resolving.
type InviteLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MatchID   uint      `gorm:"not null;index" json:"matchId"`
	Code      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`

	Match Match `json:"-" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}
