package session

import "errors"

var (
	ErrNoRememberedCredentials = errors.New("no remembered credentials")
	ErrNoMasterKey             = errors.New("master key is not configured")
	ErrLoadingCredentials      = errors.New("error loading session credentials")
	ErrSavingCredentials       = errors.New("error saving session credentials")
)
