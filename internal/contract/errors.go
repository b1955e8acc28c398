package contract

import "errors"

var (
	// ErrNotFound is returned when no contract matches the token or id.
	ErrNotFound = errors.New("contract not found")

	// ErrExpired is returned when a contract's expiry has passed while
	// it was still pending.
	ErrExpired = errors.New("contract expired")

	// ErrAlreadySigned is returned when the one-shot signing
	// transition was already taken.
	ErrAlreadySigned = errors.New("contract already signed")

	// ErrInvalidDraft is returned when a draft token is missing,
	// malformed, expired, or bound to a different contract.
	ErrInvalidDraft = errors.New("invalid draft token")

	// ErrValidation is returned when required signer fields or the
	// signature image are missing.
	ErrValidation = errors.New("missing required signer data")

	// ErrNotAuthentic is the single verification failure: the token
	// does not resolve to a signed contract. Deliberately does not
	// distinguish "not found" from "found but unsigned".
	ErrNotAuthentic = errors.New("contract not authentic")

	// ErrTemplateNotFound is returned when a template does not exist
	// or belongs to another tenant.
	ErrTemplateNotFound = errors.New("template not found")
)
