package models

// Play is one user's membership in one match: which side they ended up
// on and how many goals they scored. The (user, match) pair is the
// primary key, so a player can appear in a match at most once.
type Play struct {
	UserID  uint   `gorm:"primaryKey" json:"userId"`
	MatchID uint   `gorm:"primaryKey" json:"matchId"`
	Team    string `gorm:"type:varchar(1);default:'';check:team IN ('','A','B')" json:"team"`
	Goals   int    `gorm:"default:0;check:goals >= 0" json:"goals"`

	User  User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Match Match `json:"-" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

// Teams a play may be assigned to. Empty means "joined, not yet picked".
const (
	TeamNone = ""
	TeamA    = "A"
	TeamB    = "B"
)

func ValidTeam(team string) bool {
	return team == TeamNone || team == TeamA || team == TeamB
}
