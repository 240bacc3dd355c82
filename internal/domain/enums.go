package domain

import "strings"

// DeliveryMode describes how a course is taught.
type DeliveryMode string

const (
	DeliveryModeAny      DeliveryMode = ""
	DeliveryModeInPerson DeliveryMode = "IN_PERSON"
	DeliveryModeOnline   DeliveryMode = "ONLINE"
)

func (m DeliveryMode) String() string { return string(m) }

func (m DeliveryMode) IsValid() bool {
	switch m {
	case DeliveryModeAny, DeliveryModeInPerson, DeliveryModeOnline:
		return true
	}
	return false
}

// Weekday is the day label stored on a course schedule.
type Weekday string

const (
	WeekdayNone Weekday = ""
	Monday      Weekday = "MON"
	Tuesday     Weekday = "TUE"
	Wednesday   Weekday = "WED"
	Thursday    Weekday = "THU"
	Friday      Weekday = "FRI"
	Saturday    Weekday = "SAT"
	Sunday      Weekday = "SUN"
)

// Weekdays lists the valid days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) String() string { return string(d) }

func (d Weekday) IsValid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// Index returns the calendar position of the day (Monday = 0), or -1.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

var weekdayAliases = map[string]Weekday{
	"mon": Monday, "monday": Monday, "月": Monday, "月曜": Monday, "月曜日": Monday,
	"tue": Tuesday, "tues": Tuesday, "tuesday": Tuesday, "火": Tuesday, "火曜": Tuesday, "火曜日": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday, "水": Wednesday, "水曜": Wednesday, "水曜日": Wednesday,
	"thu": Thursday, "thur": Thursday, "thurs": Thursday, "thursday": Thursday, "木": Thursday, "木曜": Thursday, "木曜日": Thursday,
	"fri": Friday, "friday": Friday, "金": Friday, "金曜": Friday, "金曜日": Friday,
	"sat": Saturday, "saturday": Saturday, "土": Saturday, "土曜": Saturday, "土曜日": Saturday,
	"sun": Sunday, "sunday": Sunday, "日": Sunday, "日曜": Sunday, "日曜日": Sunday,
}

// ParseWeekday accepts English short or long names (any case) and Japanese
// day characters. It returns false for anything else.
func ParseWeekday(s string) (Weekday, bool) {
	d, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}
