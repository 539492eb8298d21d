//go:build race

package handoff

// raceEnabled skips the scenarios that race on the slot on purpose.
const raceEnabled = true
