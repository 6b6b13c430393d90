package domain

import "errors"

var (
	ErrVotacaoNotFound = errors.New("votacao not found")
	ErrVoteNotFound    = errors.New("vote not found")
	ErrNoActiveVotacao = errors.New("no votacao is currently selected")
	ErrInvalidChoice   = errors.New("invalid vote choice")
	ErrAuthRejected    = errors.New("realtime authentication rejected")
	ErrUnauthorized    = errors.New("credential rejected by the api")
)
