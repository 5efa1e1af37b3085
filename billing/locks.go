package billing

import "sync"

// customerLocks serializes invoice generation, payment recording, and
// session mutation per customer: balance writes cannot interleave, and an
// item cannot be edited, re-keyed, or merged while its session is being
// invoiced. The portal runs as a single process, so an in-process
// keyed mutex is sufficient; the unique index on invoices.session_key still
// backstops the invoice race at the database level.
var customerLocks sync.Map // customerID uint -> *sync.Mutex

func lockCustomer(customerID uint) func() {
	v, _ := customerLocks.LoadOrStore(customerID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
