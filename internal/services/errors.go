package services

import (
	"errors"

	"github.com/Dias221467/EventEase/internal/repository"
)

var (
	ErrNotFound         = repository.ErrNotFound
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrInvalidType      = errors.New("invalid notification type")
)
