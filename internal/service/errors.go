package service

import "errors"

var (
	ErrHandleRequired       = errors.New("product handle required")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotReady      = errors.New("session not ready")
	ErrOptionInvalid        = errors.New("option selection invalid")
	ErrProductLoadFailed    = errors.New("product load failed")
	ErrNoPurchasableVariant = errors.New("no purchasable variant")
	ErrCartAddFailed        = errors.New("cart add failed")
)
