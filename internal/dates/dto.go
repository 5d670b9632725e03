// internal/dates/dto.go
package dates

import "encoding/json"

// DTOs for API requests/responses

type ProposeDateDTO struct {
	UserTo           int64           `json:"user_to" validate:"required"`
	Date             string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time             *string         `json:"time,omitempty"`
	LocationMetadata json.RawMessage `json:"location_metadata,omitempty"`
}

type UpdateDateDTO struct {
	UserTo           int64           `json:"user_to" validate:"required"`
	Date             string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time             *string         `json:"time,omitempty"`
	LocationMetadata json.RawMessage `json:"location_metadata,omitempty"`
	UserFromApproved *bool           `json:"user_from_approved,omitempty"`
	UserToApproved   *bool           `json:"user_to_approved,omitempty"`
}

type CancelDateDTO struct {
	UserTo int64  `json:"user_to" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}
