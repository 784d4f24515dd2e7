package dto

import (
	"strings"
	"time"

	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/utils"
)

// ErrInvalidDate is returned when a date field is neither YYYY-MM-DD nor RFC 3339
var ErrInvalidDate = apierrors.Validation("Dates must be YYYY-MM-DD or RFC 3339 timestamps")

// MessageResponse is the body of endpoints that only acknowledge an action
type MessageResponse struct {
	Message string `json:"message"`
}

// CountResponse acknowledges a bulk action
type CountResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := utils.ParseTime(strings.TrimSpace(*raw))
	if err != nil {
		return nil, ErrInvalidDate
	}
	t = t.UTC()
	return &t, nil
}
