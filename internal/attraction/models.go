package attraction

import (
	"time"

	"github.com/daymatch/daymatch-backend/internal/common/database"
)

// Attraction is one user's one-sided rating of another user for a given day.
// The (day, user_from, user_to) triple is unique and immutable after
// creation; Result and FirstMessageRights are the only fields ever mutated,
// and only by the reciprocal-match computation.
type Attraction struct {
	ID                 int64         `json:"id" db:"id"`
	UserFrom           int64         `json:"user_from" db:"user_from"`
	UserTo             int64         `json:"user_to" db:"user_to"`
	Day                database.Date `json:"date" db:"day"`
	RomanticRating     int           `json:"romantic_rating" db:"romantic_rating"`
	SexualRating       int           `json:"sexual_rating" db:"sexual_rating"`
	FriendshipRating   int           `json:"friendship_rating" db:"friendship_rating"`
	LongTermPotential  bool          `json:"long_term_potential" db:"long_term_potential"`
	Intellectual       bool          `json:"intellectual" db:"intellectual"`
	Emotional          bool          `json:"emotional" db:"emotional"`
	Result             *bool         `json:"result" db:"result"`
	FirstMessageRights *bool         `json:"first_message_rights" db:"first_message_rights"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// Cost is the token price of the rating. Advisory dimensions are free.
func (a *Attraction) Cost() int64 {
	return int64(a.RomanticRating + a.SexualRating + a.FriendshipRating)
}
