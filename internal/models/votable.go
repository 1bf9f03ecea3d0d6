package models

import "time"

type VotableType string

const (
	VotableQuestion  VotableType = "Question"
	VotableStatement VotableType = "Statement"
	VotableProposal  VotableType = "Proposal"
)

type VotableTypeChoice struct {
	Value VotableType
	Label string
}

var VotableTypeChoices = []VotableTypeChoice{
	{Value: VotableQuestion, Label: "QUESTION"},
	{Value: VotableStatement, Label: "STATEMENT"},
	{Value: VotableProposal, Label: "PROPOSAL"},
}

func (t VotableType) Valid() bool {
	_, ok := t.lookup()
	return ok
}

// Display returns the choice label, or the raw value for unknown types.
func (t VotableType) Display() string {
	if c, ok := t.lookup(); ok {
		return c.Label
	}
	return string(t)
}

func (t VotableType) lookup() (VotableTypeChoice, bool) {
	for _, c := range VotableTypeChoices {
		if c.Value == t {
			return c, true
		}
	}
	return VotableTypeChoice{}, false
}

// Statistics are the derived vote fields cached on a votable.
type Statistics struct {
	TotalVotes              int     `gorm:"not null;default:0" json:"total_votes" mapstructure:"total_votes"`
	PositiveVotes           int     `gorm:"not null;default:0" json:"positive_votes" mapstructure:"positive_votes"`
	NegativeVotes           int     `gorm:"not null;default:0" json:"negative_votes" mapstructure:"negative_votes"`
	ParticipationPercentage int     `gorm:"not null;default:0" json:"participation_percentage" mapstructure:"participation_percentage"`
	PositivePercentage      int     `gorm:"not null;default:0" json:"positive_percentage" mapstructure:"positive_percentage"`
	NegativePercentage      int     `gorm:"not null;default:0" json:"negative_percentage" mapstructure:"negative_percentage"`
	WilsonScore             float64 `gorm:"not null;default:0" json:"wilson_score" mapstructure:"wilson_score"`
}

// Agreement is the stronger of the two side percentages.
func (s Statistics) Agreement() int {
	return max(s.PositivePercentage, s.NegativePercentage)
}

type Votable struct {
	ID          int         `gorm:"primaryKey" json:"id"`
	CreatorID   int         `gorm:"not null;index" json:"creator_id"`
	Creator     User        `gorm:"foreignKey:CreatorID" json:"-"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Text        string      `gorm:"type:text;not null" json:"text"`
	VotableType VotableType `gorm:"size:20;not null" json:"votable_type"`
	Statistics  `gorm:"embedded"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

type CreateVotableRequest struct {
	Title       string      `json:"title" binding:"required,max=200"`
	Text        string      `json:"text" binding:"required"`
	VotableType VotableType `json:"votable_type" binding:"required"`
}

// VotableResponse is a votable as seen by one user.
type VotableResponse struct {
	Votable
	UserVote           VoteLabel `json:"user_vote"`
	VotableTypeDisplay string    `json:"votable_type_display"`
}

func NewVotableResponse(v Votable, label VoteLabel) VotableResponse {
	return VotableResponse{
		Votable:            v,
		UserVote:           label,
		VotableTypeDisplay: v.VotableType.Display(),
	}
}
