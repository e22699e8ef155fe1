package models

import "errors"

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrValidation         = errors.New("required field is missing or empty")
	ErrEmptyStatus        = errors.New("no status provided")
	ErrEmptyCaptureID     = errors.New("no capture id provided")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrPaymentRejected    = errors.New("payment capture was not confirmed")
)
