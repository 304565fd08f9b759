package http

import (
	"github.com/google/uuid"

	commonerrors "github.com/screentime-labs/tracker/backend/internal/common/errors"
)

func ValidateUUID(s string) error {
	if s == "" {
		return commonerrors.ErrEmptyUUID
	}
	_, err := uuid.Parse(s)
	return err
}
