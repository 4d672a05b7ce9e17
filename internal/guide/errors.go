package guide

import "errors"

var (
	ErrSessionNotReady      = errors.New("guide session not ready")
	ErrSessionStale         = errors.New("guide session completion stale")
	ErrUnknownOption        = errors.New("guide option not defined for product")
	ErrUnknownOptionValue   = errors.New("guide option value not permitted")
	ErrNoPurchasableVariant = errors.New("guide no purchasable variant")
)
