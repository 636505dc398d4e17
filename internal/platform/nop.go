package platform

// Nop is a toggle that does nothing. Hosts use it when a toggle is disabled
// in config or cannot apply, such as in SSH sessions.
type Nop struct{}

func (Nop) Enable() error  { return nil }
func (Nop) Disable() error { return nil }
