package dietz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DatetimeFormat is the format used to write instants.
const DatetimeFormat = time.RFC3339

// now is replaced in tests.
var now = time.Now

var relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmqy])$`)

// ParseInstant parses an instant from a string, returned in UTC.
//
// Accepted formats are RFC3339 ("2020-06-16T00:00:00Z"), a plain date
// ("2020-6-16", midnight UTC), "0d" for today at midnight UTC, and a relative
// date like "-1d", "+2w", "-3m", "-1q" or "-1y" counted from today.
func ParseInstant(str string) (time.Time, error) {
	str = strings.TrimSpace(str)

	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		return t.UTC(), nil
	}

	y, m, d := now().UTC().Date()
	if str == "0d" {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	// Relative Duration Format (e.g., -1d, +2w) - sign is mandatory
	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		num, err := strconv.Atoi(match[2])
		if err != nil {
			// This should not happen given the regex
			return time.Time{}, fmt.Errorf("invalid number in relative date %q: %w", str, err)
		}
		if match[1] == "-" {
			num = -num
		}
		switch match[3] {
		case "d":
			d += num
		case "w":
			d += 7 * num
		case "m":
			m += time.Month(num)
		case "q":
			m += time.Month(3 * num)
		case "y":
			y += num
		}
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q want format %q or %q: %w", str, time.RFC3339, readDateFormat, err)
	}
	return on.UTC(), nil
}

// MustParseInstant is like ParseInstant but panics on error.
func MustParseInstant(str string) time.Time {
	t, err := ParseInstant(str)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// jsonInstant decodes an instant in data files: RFC3339 or a plain date.
// Relative dates are refused, data files must not depend on the current day.
type jsonInstant time.Time

func (j *jsonInstant) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	str = strings.TrimSpace(str)
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		*j = jsonInstant(t.UTC())
		return nil
	}
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return fmt.Errorf("invalid date %q in data file, want format %q or %q: %w", str, time.RFC3339, readDateFormat, err)
	}
	*j = jsonInstant(on)
	return nil
}

func (j jsonInstant) MarshalJSON() ([]byte, error) {
	str := time.Time(j).Format(time.RFC3339Nano)
	return json.Marshal(&str)
}

// check that a jsonInstant pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*jsonInstant)(nil)
var _ json.Unmarshaler = (*jsonInstant)(nil)
