package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the expected draw outcomes. Callers match these with
// errors.Is and translate them to user-facing messages.
var (
	// ErrInvalidEmail indicates a malformed participant email
	ErrInvalidEmail = errors.New("invalid participant email")

	// ErrCampaignNotFound indicates the campaign does not exist
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrCampaignNotActive indicates the campaign is outside its window or deactivated
	ErrCampaignNotActive = errors.New("campaign is not active")

	// ErrStoreDrawsDisabled indicates the owning store is not allowed to run draws
	ErrStoreDrawsDisabled = errors.New("store is not allowed to run draws")

	// ErrAlreadyParticipated indicates the participant has already played this campaign
	ErrAlreadyParticipated = errors.New("participant has already played this campaign")

	// ErrNoPrizesAvailable indicates every prize in the campaign is exhausted
	ErrNoPrizesAvailable = errors.New("no prizes available")

	// ErrClaimNotFound indicates no winner record matches the claim code
	ErrClaimNotFound = errors.New("claim not found")

	// ErrClaimAlreadyRedeemed indicates the claim code was already used
	ErrClaimAlreadyRedeemed = errors.New("claim has already been redeemed")

	// ErrClaimExpired indicates the claim's redemption window has passed
	ErrClaimExpired = errors.New("claim has expired")
)

// DrawError wraps a persistence-layer failure inside the draw protocol.
// When a DrawError surfaces, any stock taken by the failed draw has already
// been compensated, so retrying the whole draw is safe.
type DrawError struct {
	Step string
	Err  error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("draw failed at %s: %v", e.Step, e.Err)
}

func (e *DrawError) Unwrap() error {
	return e.Err
}

func newDrawError(step string, err error) *DrawError {
	return &DrawError{Step: step, Err: err}
}
