package ratecontrol

import "time"

// WaitFor returns how long the client should wait before issuing the next
// fetch.
//
// A zero lastRequest (no fetch has happened yet) opens the gate immediately.
// A behind client also proceeds immediately regardless of the configured
// interval: once backlog has accumulated, the only correct behavior is to
// drain it as fast as the transport allows. Otherwise the next fetch is due
// at lastRequest + interval, and the remaining time is returned, floored at
// zero.
func WaitFor(now, lastRequest time.Time, interval time.Duration, behind bool) time.Duration {
	if lastRequest.IsZero() || behind {
		return 0
	}
	wait := lastRequest.Add(interval).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
