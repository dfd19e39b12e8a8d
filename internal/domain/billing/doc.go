// Package billing holds the payment side of the clinic ledger.
//
// Its single aggregate is PaymentRecord, an append-only record of money
// received from a patient. Records are written two ways:
//   - accrued by the check-in engine (single_session on per-session
//     check-ins, package when a postpaid cycle closes)
//   - registered manually by the practitioner (prepaid packages,
//     corrections)
//
// Records are never updated or deleted; reports recompute from the log.
// The patient and scheduling side lives in the clinic domain.
package billing
