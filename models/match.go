package models

import "time"

// Match is a single kickoff game. The creator is auto-joined as a player
// on creation; deleting a match takes its plays and invite links with it.
type Match struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ScoreLocal int       `gorm:"not null;default:0" json:"scoreLocal"`
	ScoreAway  int       `gorm:"not null;default:0" json:"scoreAway"`
	Timestamp  time.Time `gorm:"not null" json:"timestamp"`
	MVP        *uint     `gorm:"column:mvp" json:"mvp"`
	Location   string    `gorm:"type:varchar(255);not null" json:"location"`
	Slug       string    `gorm:"type:varchar(255);index" json:"slug"`
	Finished   bool      `gorm:"not null;default:false" json:"finished"`
	CreatorID  uint      `gorm:"not null;index" json:"creatorId"`
	IsPublic   bool      `gorm:"not null;default:false" json:"isPublic"`

	Creator   User  `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	MVPPlayer *User `json:"-" gorm:"foreignKey:MVP;constraint:OnDelete:SET NULL"`

	// Filled on reads, not stored
	CreatorUsername string `gorm:"-" json:"creatorUsername,omitempty"`
}

func (Match) TableName() string { return "matches" }
