package model

import "strings"

// Timeframe selects the reporting window of a performance query.
type Timeframe string

const (
	Timeframe1W  Timeframe = "1W"
	Timeframe1M  Timeframe = "1M"
	Timeframe3M  Timeframe = "3M"
	Timeframe6M  Timeframe = "6M"
	Timeframe1Y  Timeframe = "1Y"
	TimeframeYTD Timeframe = "YTD"
	TimeframeAll Timeframe = "ALL"
)

// ParseTimeframe normalizes user input. Unknown values map to ALL.
func ParseTimeframe(s string) Timeframe {
	switch tf := Timeframe(strings.ToUpper(strings.TrimSpace(s))); tf {
	case Timeframe1W, Timeframe1M, Timeframe3M, Timeframe6M, Timeframe1Y, TimeframeYTD:
		return tf
	default:
		return TimeframeAll
	}
}

// TimeframeStart returns the first date included in the window ending at today.
// ALL starts at the agent's inception date.
func TimeframeStart(tf Timeframe, inception, today Date) Date {
	switch tf {
	case Timeframe1W:
		return today.Add(-7)
	case Timeframe1M:
		return today.AddDate(0, -1, 0)
	case Timeframe3M:
		return today.AddDate(0, -3, 0)
	case Timeframe6M:
		return today.AddDate(0, -6, 0)
	case Timeframe1Y:
		return today.AddDate(-1, 0, 0)
	case TimeframeYTD:
		return NewDate(today.Year(), 1, 1)
	default:
		return inception
	}
}
