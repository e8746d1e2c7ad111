package domain

import "time"

// PickupItem is one bundle sitting in the portal's shared pickup area. A
// single item can cover several cases when the portal batches generation, so
// matching items back to requests is many-to-many.
type PickupItem struct {
	Handle    string
	FileName  string
	Status    string
	ExpiresAt time.Time
	Cases     []string
}

func (p PickupItem) Covers(caseNumber string) bool {
	for _, number := range p.Cases {
		if number == caseNumber {
			return true
		}
	}

	return false
}
