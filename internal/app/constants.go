package app

// SeatCount is the number of seats in a hosted match. The race is strictly
// head-to-head; keep this centralized so tests don't scatter the literal.
const SeatCount = 2
