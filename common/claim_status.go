package common

import (
	"fmt"
)

type ClaimStatus string

const (
	ClaimStatusPending    ClaimStatus = "pending"
	ClaimStatusInProgress ClaimStatus = "inprogress"
	ClaimStatusConfirmed  ClaimStatus = "confirmed"
	ClaimStatusFailed     ClaimStatus = "failed"
)

type Direction string

const (
	DirectionBridgeToSolana Direction = "b2s"
	DirectionSolanaToBridge Direction = "s2b"
)

// IsValidClaimStatus reports whether status is one of the four legal claim
// states. Any other value found in a persisted record is a data-integrity error.
func IsValidClaimStatus(status ClaimStatus) bool {
	switch status {
	case ClaimStatusPending, ClaimStatusInProgress, ClaimStatusConfirmed, ClaimStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminalClaimStatus reports whether a claim in this status may never
// transition again on its own. failed claims stay terminal until an operator
// resets them.
func IsTerminalClaimStatus(status ClaimStatus) bool {
	return status == ClaimStatusConfirmed || status == ClaimStatusFailed
}

// IsClaimTransitionPossible validates a claim status transition. A claim goes
// pending -> inprogress -> confirmed or failed. The backwards edges
// inprogress -> pending and failed -> pending exist only for the operator
// reset path.
func IsClaimTransitionPossible(from ClaimStatus, to ClaimStatus) error {
	isInvalidTransition := false

	switch from {
	case ClaimStatusPending:
		isInvalidTransition = to != ClaimStatusInProgress

	case ClaimStatusInProgress:
		isInvalidTransition = to == ClaimStatusInProgress

	case ClaimStatusFailed:
		isInvalidTransition = to != ClaimStatusPending

	case ClaimStatusConfirmed:
		isInvalidTransition = true

	default:
		return fmt.Errorf("unknown claim status: %s", from)
	}

	if isInvalidTransition {
		return fmt.Errorf("invalid claim status transition %s -> %s", from, to)
	}

	return nil
}
