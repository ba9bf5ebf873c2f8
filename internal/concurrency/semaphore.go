package concurrency

// Semaphore bounds how many simulated printer connections are served at once.
// A nil Semaphore never grants a ticket.
type Semaphore struct {
	tickets chan struct{}
}

func NewSemaphore(maxConcurrency int) *Semaphore {
	return &Semaphore{
		tickets: make(chan struct{}, maxConcurrency),
	}
}

func (s *Semaphore) TryAcquire() bool {
	if s == nil || s.tickets == nil {
		return false
	}
	select {
	case s.tickets <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Semaphore) Release() {
	if s == nil || s.tickets == nil {
		return
	}
	select {
	case <-s.tickets:
	default:
	}
}

// InUse reports how many tickets are currently held.
func (s *Semaphore) InUse() int {
	if s == nil || s.tickets == nil {
		return 0
	}
	return len(s.tickets)
}
