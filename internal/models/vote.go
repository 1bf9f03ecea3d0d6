package models

import "time"

// VoteType is the value a user assigns to a votable.
type VoteType int

const (
	VotePositive VoteType = 1
	VoteNegative VoteType = -1
	NoVote       VoteType = 0
)

type VoteTypeChoice struct {
	Value VoteType
	Label string
}

var VoteTypeChoices = []VoteTypeChoice{
	{Value: VotePositive, Label: "POSITIVE"},
	{Value: VoteNegative, Label: "NEGATIVE"},
	{Value: NoVote, Label: "NO_VOTE"},
}

func (v VoteType) Valid() bool {
	for _, c := range VoteTypeChoices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// VoteLabel is what a user's current vote on a votable reads as.
type VoteLabel string

const (
	LabelPositive VoteLabel = "Positive"
	LabelNegative VoteLabel = "Negative"
	LabelNoVote   VoteLabel = "No Vote"
)

// LabelFor maps a vote value to its label. A missing vote is passed as NoVote,
// so "never voted" and "voted 0" read the same.
func LabelFor(v VoteType) VoteLabel {
	switch v {
	case VotePositive:
		return LabelPositive
	case VoteNegative:
		return LabelNegative
	default:
		return LabelNoVote
	}
}

// Vote model - one row per (user, votable), value overwritten on revote
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_vote_user_votable" json:"user_id"`
	VotableID int       `gorm:"not null;uniqueIndex:idx_vote_user_votable;index" json:"votable_id"`
	Value     VoteType  `gorm:"not null" json:"vote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	Vote *int `json:"vote" binding:"required"`
}
