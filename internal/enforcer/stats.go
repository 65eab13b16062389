package enforcer

import "time"

// PassStats summarizes one evaluation pass for the status endpoint.
type PassStats struct {
	Time     time.Time `json:"time"`
	Duration float64   `json:"duration_seconds"`
	Torrents int       `json:"torrents"`
	Matched  int       `json:"matched"`
	Applied  int       `json:"applied"`
	Errors   int       `json:"errors"`
}
