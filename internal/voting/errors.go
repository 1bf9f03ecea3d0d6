package voting

import "errors"

var (
	ErrNotFound           = errors.New("votable not found")
	ErrInvalidVoteValue   = errors.New("vote must be -1, 0 or 1")
	ErrInvalidOrder       = errors.New("invalid order_by parameter")
	ErrInvalidVotableType = errors.New("votable_type must be Question, Statement or Proposal")
	ErrEmptyField         = errors.New("title and text are required")
)
