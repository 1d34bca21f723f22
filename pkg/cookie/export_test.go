package cookie

import "time"

// SetClock replaces the time source used for expiry.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }
