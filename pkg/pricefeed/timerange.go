package pricefeed

import (
	"strings"
	"time"
)

type TimeRange string

const (
	Range1H TimeRange = "1H"
	Range1D TimeRange = "1D"
	Range1W TimeRange = "1W"
	Range1M TimeRange = "1M"
	Range1Y TimeRange = "1Y"
)

var TimeRanges = []TimeRange{Range1H, Range1D, Range1W, Range1M, Range1Y}

func ParseTimeRange(s string) (TimeRange, bool) {
	r := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := rangeDays[r]
	return r, ok
}

// rangeDays is the provider's smallest window that covers the range.
var rangeDays = map[TimeRange]string{
	Range1H: "1",
	Range1D: "1",
	Range1W: "7",
	Range1M: "30",
	Range1Y: "365",
}

// window is zero when every returned point belongs to the range.
func (r TimeRange) window() time.Duration {
	if r == Range1H {
		return time.Hour
	}
	return 0
}
