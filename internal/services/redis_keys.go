package services

import "time"

const (
	KeyBalance       = "balance:%s:%s"  // session, currency
	KeySessionLedger = "ledger:%s"      // session
	KeySessionInfo   = "session:%s"     // session

	TTLSession = 30 * 24 * time.Hour // 30 days

	// UI-facing history cap; the redis list itself keeps full history.
	DefaultRecentResults = 10
)
