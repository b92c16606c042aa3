// Package command defines the structured edits understood by the scheduler.
//
// A Payload is the loose contract produced by extraction strategies and fed to
// the validator. A Command is the validated, typed form: DelayOrder,
// MoveOrder, SwapOrders or Unknown. Only validated commands reach the
// schedule mutator.
package command
