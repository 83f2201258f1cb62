package errors

import "errors"

var (
	ErrAdminOnly        = errors.New("only the admin account may manage authorization")
	ErrInvalidAccountID = errors.New("account id must be non-empty")
)
