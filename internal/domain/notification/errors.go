package notification

import (
	"errors"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"
)

var (
	ErrEventNotFound = apperror.New(apperror.KindNotFound, "notification not found")
	ErrQueueFull     = errors.New("notification queue is full")
	ErrSinkDisabled  = errors.New("notification sink is not configured for recipient")
)
