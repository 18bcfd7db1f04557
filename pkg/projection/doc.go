// Package projection computes investment growth schedules: given a starting
// amount, a recurring monthly contribution and an assumed annual return, it
// produces the year-by-year contributed and projected balances the app
// charts on the simulation screen.
//
// Everything here is pure arithmetic — no I/O, no state, safe to call from
// any goroutine. Results are estimates for presentation, not financial
// advice, and use float64 throughout; callers needing exact accounting
// should not use this package.
package projection
