package service

import (
	"errors"

	"ffclash/internal/common"
)

// notFoundAs gives a bare ErrNotFound a resource specific message.
func notFoundAs(err error, message string) error {
	if errors.Is(err, common.ErrNotFound) {
		var dErr *common.Error
		if errors.As(err, &dErr) {
			return err
		}
		return common.NewError(common.ErrNotFound, message)
	}
	return err
}
