// Package engine implements the authoritative command/turn state machine.
// One Session exists per running game; the transport feeds it commands
// strictly in arrival order and broadcasts whatever it emits.
package engine

import (
	"errors"
	"fmt"
)

// Rejection codes. A rejected command is non-fatal: it is reported to the
// issuing client only and the game continues.
const (
	CodeWrongTurn         = "wrong-turn"
	CodeWrongPhase        = "wrong-phase"
	CodeRuleDisabled      = "rule-disabled"
	CodeAlreadyRolled     = "already-rolled"
	CodeMustRoll          = "must-roll"
	CodeInsufficientFunds = "insufficient-funds"
	CodeCellUnavailable   = "cell-unavailable"
	CodeNotOwner          = "not-owner"
	CodeNoMonopoly        = "no-monopoly"
	CodeHouseLimit        = "house-limit"
	CodeInvalidPlacement  = "invalid-placement"
	CodeAlreadyAttacked   = "cell-already-attacked"
	CodeAlreadyActed      = "already-acted"
	CodeNoActiveTrade     = "no-active-trade"
	CodeTradeActive       = "trade-active"
	CodeNotTradeTarget    = "not-trade-target"
	CodeNotProposer       = "not-proposer"
	CodeInvalidTrade      = "invalid-trade"
	CodeNotInJail         = "not-in-jail"
	CodeNoJailToken       = "no-jail-token"
	CodeUnknownPlayer     = "unknown-player"
)

// Rejection is the result value a module returns when a command fails
// validation. It implements error so it travels the usual return path; no
// module operation panics into the turn machine.
type Rejection struct {
	Code string
	Msg  string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Msg)
}

func reject(code, format string, args ...interface{}) *Rejection {
	return &Rejection{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// AsRejection unwraps err into a Rejection, if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// Consistency violations. These cannot occur under the single-writer
// discipline; if one is detected the session is ended rather than left in
// undefined state.
var (
	ErrNoEligiblePlayer   = errors.New("turn cursor found no eligible player")
	ErrDuplicateOwnership = errors.New("duplicate cell ownership")
)
