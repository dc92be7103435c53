package domain

import "errors"

var (
	// Engine failures. All four are fatal to a single simulation request and
	// are surfaced to the caller verbatim; no partial result accompanies them.
	ErrEmptyBook      = errors.New("orderbook side is empty")
	ErrCrossedBook    = errors.New("orderbook is crossed")
	ErrInvalidDepth   = errors.New("invalid book depth")
	ErrUnknownFeeTier = errors.New("unknown fee tier")

	ErrInvalidParams = errors.New("invalid trade parameters")
	ErrNoSnapshot    = errors.New("no orderbook snapshot available")

	ErrNotFound     = errors.New("not found")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
