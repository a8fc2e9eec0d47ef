package domain

import "fmt"

// MinuteOfDay is a time of day expressed as minutes since midnight,
// 0 through 1439. Duty segments carry their start and end this way so
// duration, ordering, and overlap checks are plain integer arithmetic.
type MinuteOfDay int

// MinutesPerDay is the number of minutes in one calendar day.
const MinutesPerDay = 24 * 60

// ParseClock parses an "HH:MM" string into a MinuteOfDay. Both halves
// must be exactly two digits; no whitespace or sign characters.
func ParseClock(s string) (MinuteOfDay, error) {
	if len(s) != 5 || s[2] != ':' ||
		!isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return 0, fmt.Errorf("invalid time %q; expected HH:MM", s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q; expected HH:MM", s)
	}
	return MinuteOfDay(h*60 + m), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Clock formats the value as "HH:MM".
func (m MinuteOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MarshalJSON renders the value as its "HH:MM" string form.
func (m MinuteOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Clock() + `"`), nil
}

// UnmarshalJSON accepts the "HH:MM" string form.
func (m *MinuteOfDay) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid time %s; expected \"HH:MM\"", b)
	}
	v, err := ParseClock(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
