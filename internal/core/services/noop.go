package services

import "time"

// noopAuthMetrics discards metrics when no recorder is wired.
type noopAuthMetrics struct{}

func (noopAuthMetrics) RecordAttempt(string, string)        {}
func (noopAuthMetrics) RecordRegistrationRetry()            {}
func (noopAuthMetrics) ObservePasswordVerify(time.Duration) {}

type noopEventTracker struct{}

func (noopEventTracker) TrackSignIn(string, string, bool) {}
