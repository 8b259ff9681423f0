package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
)

// OpenState is the outcome of evaluating a pharmacy's schedule
type OpenState string

const (
	OpenStateOpen        OpenState = "Open"
	OpenStateClosed      OpenState = "Closed"
	OpenStateUnknown     OpenState = "Unknown"
	OpenStateUnparseable OpenState = "Unparseable"
)

// Status maps an open state onto the status emitted with a facility record.
// Unparseable schedules are reported as Unknown.
func (s OpenState) Status() entities.FacilityStatus {
	switch s {
	case OpenStateOpen:
		return entities.StatusOpen
	case OpenStateClosed:
		return entities.StatusClosed
	default:
		return entities.StatusUnknown
	}
}

// ISOWeekday numbers days 1=Monday through 7=Sunday, matching the feed's
// dutyTime1..dutyTime7 fields.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// HoursKeys returns the start and close field names for an ISO weekday
func HoursKeys(isoWeekday int) (start, end string) {
	return fmt.Sprintf("dutyTime%ds", isoWeekday), fmt.Sprintf("dutyTime%dc", isoWeekday)
}

// ClockHHMM renders the wall-clock time as an HHMM integer
func ClockHHMM(t time.Time) int {
	return t.Hour()*100 + t.Minute()
}

// EvaluateOpenState checks today's window of a feed item against now.
// Windows are inclusive at both ends and never wrap past midnight.
func EvaluateOpenState(item entities.RawFeedItem, now time.Time) OpenState {
	startKey, endKey := HoursKeys(ISOWeekday(now))

	startRaw, okStart := item.Lookup(startKey)
	endRaw, okEnd := item.Lookup(endKey)
	if !okStart || !okEnd {
		return OpenStateUnknown
	}

	start, err := strconv.Atoi(startRaw)
	if err != nil {
		return OpenStateUnparseable
	}
	end, err := strconv.Atoi(endRaw)
	if err != nil {
		return OpenStateUnparseable
	}

	clock := ClockHHMM(now)
	if start <= clock && clock <= end {
		return OpenStateOpen
	}
	return OpenStateClosed
}
