package domain

import "errors"

// ErrInsufficientHistory signals that a statement window cannot be formed
// because the provider returned too few periods. Batch runners treat it the
// same way as any other per-window failure: log and skip.
var ErrInsufficientHistory = errors.New("insufficient statement history for window")

// StatementHistory holds the ordered (most-recent-first) statement records for
// one ticker, as returned by the statement source.
type StatementHistory struct {
	Snapshots        []FinancialSnapshot
	EnterpriseValues []EnterpriseValueRecord
}

// Window returns the snapshot pair and enterprise-value record for sliding
// window k. The pair is (base, prior): the base period plus the one before it,
// needed to derive the change in working capital.
func (h *StatementHistory) Window(k int) (base, prior FinancialSnapshot, ev EnterpriseValueRecord, err error) {
	if k < 0 || k+1 >= len(h.Snapshots) || k >= len(h.EnterpriseValues) {
		err = ErrInsufficientHistory
		return
	}
	return h.Snapshots[k], h.Snapshots[k+1], h.EnterpriseValues[k], nil
}

// Windows returns the number of complete windows available.
func (h *StatementHistory) Windows() int {
	n := len(h.Snapshots) - 1
	if len(h.EnterpriseValues) < n {
		n = len(h.EnterpriseValues)
	}
	if n < 0 {
		return 0
	}
	return n
}
