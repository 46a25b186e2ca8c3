package usecase

import (
	"errors"
	"fmt"

	chat "evento-chat/internal/pkg/chat/application/domain"
)

var (
	// ErrPersistence indicates an infrastructure/repository failure inside a use case
	ErrPersistence = errors.New("chat use case persistence error")
	// ErrSendInFlight rejects a send while the same input is still being sent
	ErrSendInFlight = errors.New("chat: a send for this input is already in flight")
)

// persistenceErr wraps repository failures in ErrPersistence. A store
// rejecting a malformed user id stays a validation error.
func persistenceErr(err error) error {
	if errors.Is(err, chat.ErrInvalidUserID) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
