package dto

import (
	"github.com/google/uuid"

	"github.com/dtroode/academia-moderation/internal/model"
)

// ApproveRequest is the body of an approve call.
type ApproveRequest struct {
	AdminNotes *string `json:"adminNotes"`
}

// RejectRequest is the body of a reject call.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// BulkRequest is the body of a bulk update call.
type BulkRequest struct {
	MaterialIDs []string `json:"materialIds"`
	Action      string   `json:"action"`
	Reason      string   `json:"reason"`
	AdminNotes  *string  `json:"adminNotes"`
}

// FeaturedRequest is the body of a featured toggle call.
type FeaturedRequest struct {
	Featured *bool `json:"featured"`
}

// ParseID parses an identifier received from a client.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, model.NewErrValidation("", model.FieldError{
			Field:   field,
			Message: field + " must be a valid id",
		})
	}
	return id, nil
}

// Command converts the request into a bulk update command.
func (r BulkRequest) Command() (model.BulkUpdateCommand, error) {
	ids := make([]uuid.UUID, 0, len(r.MaterialIDs))
	for _, raw := range r.MaterialIDs {
		id, err := ParseID("materialIds", raw)
		if err != nil {
			return model.BulkUpdateCommand{}, err
		}
		ids = append(ids, id)
	}
	return model.BulkUpdateCommand{
		MaterialIDs: ids,
		Action:      model.BulkAction(r.Action),
		Reason:      r.Reason,
		AdminNotes:  r.AdminNotes,
	}, nil
}

// Value returns the requested flag or a validation error when absent.
func (r FeaturedRequest) Value() (bool, error) {
	if r.Featured == nil {
		return false, model.NewErrValidation("", model.FieldError{
			Field:   "featured",
			Message: "featured is a required field",
		})
	}
	return *r.Featured, nil
}
