// internal/attraction/dto.go
package attraction

// DTOs for API requests/responses

type SubmitRatingDTO struct {
	UserTo            int64  `json:"user_to" validate:"required"`
	Date              string `json:"date" validate:"required,datetime=2006-01-02"`
	RomanticRating    int    `json:"romantic_rating" validate:"gte=0,lte=10"`
	SexualRating      int    `json:"sexual_rating" validate:"gte=0,lte=10"`
	FriendshipRating  int    `json:"friendship_rating" validate:"gte=0,lte=10"`
	LongTermPotential bool   `json:"long_term_potential"`
	Intellectual      bool   `json:"intellectual"`
	Emotional         bool   `json:"emotional"`
}
