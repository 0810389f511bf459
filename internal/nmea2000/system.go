package nmea2000

import (
	"encoding/binary"
	"time"
)

// SystemTime is PGN 126992. Date and time are UTC.
type SystemTime struct {
	SID            uint8
	Source         uint8
	Year           uint16
	Month          uint8
	Day            uint8
	Hour           uint8
	Minute         uint8
	Second         uint8
	UsecSinceEpoch uint64
}

const (
	SystemTimeSID Fields = 1 << iota
	SystemTimeSource
	SystemTimeYear
	SystemTimeMonth
	SystemTimeDay
	SystemTimeHour
	SystemTimeMinute
	SystemTimeSecond
	SystemTimeUsecSinceEpoch
)

// SystemTimeCalendar is the set needed for a complete wall-clock reading.
const SystemTimeCalendar = SystemTimeYear | SystemTimeMonth | SystemTimeDay |
	SystemTimeHour | SystemTimeMinute | SystemTimeSecond

const (
	secondsPerDay   = 24 * 60 * 60
	systemTimeScale = 1e-4 // seconds per unit
)

func ParseSystemTime(data []byte, want Fields) (SystemTime, Fields) {
	var (
		st SystemTime
		ok Fields
	)
	if want.Has(SystemTimeSID) {
		if v, valid := u8(data, 0); valid {
			st.SID, ok = v, ok|SystemTimeSID
		}
	}
	if want.Has(SystemTimeSource) {
		if v, valid := lowBits(data, 1, 4); valid {
			st.Source, ok = v, ok|SystemTimeSource
		}
	}

	days, dateOK := u16(data, 2)
	ticks, timeOK := u32(data, 4)
	if timeOK && ticks >= secondsPerDay/systemTimeScale {
		timeOK = false
	}
	date := time.Unix(int64(days)*secondsPerDay, 0).UTC()
	tod := time.Duration(ticks) * 100 * time.Microsecond

	if dateOK {
		if want.Has(SystemTimeYear) {
			st.Year, ok = uint16(date.Year()), ok|SystemTimeYear
		}
		if want.Has(SystemTimeMonth) {
			st.Month, ok = uint8(date.Month()), ok|SystemTimeMonth
		}
		if want.Has(SystemTimeDay) {
			st.Day, ok = uint8(date.Day()), ok|SystemTimeDay
		}
	}
	if timeOK {
		if want.Has(SystemTimeHour) {
			st.Hour, ok = uint8(tod/time.Hour), ok|SystemTimeHour
		}
		if want.Has(SystemTimeMinute) {
			st.Minute, ok = uint8(tod%time.Hour/time.Minute), ok|SystemTimeMinute
		}
		if want.Has(SystemTimeSecond) {
			st.Second, ok = uint8(tod%time.Minute/time.Second), ok|SystemTimeSecond
		}
	}
	if dateOK && timeOK && want.Has(SystemTimeUsecSinceEpoch) {
		st.UsecSinceEpoch = uint64(date.Add(tod).UnixMicro())
		ok |= SystemTimeUsecSinceEpoch
	}
	return st, ok
}

// SystemTimePayload builds a PGN 126992 payload for t.
func SystemTimePayload(sid, source uint8, t time.Time) []byte {
	t = t.UTC()
	b := blank()
	b[0] = sid
	b[1] = 0xF0 | source&0x0F
	binary.LittleEndian.PutUint16(b[2:], uint16(t.Unix()/secondsPerDay))
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	binary.LittleEndian.PutUint32(b[4:], uint32(t.Sub(midnight)/(100*time.Microsecond)))
	return b
}
