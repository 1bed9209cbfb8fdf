package reminder

import (
	"encoding/json"

	"github.com/vvolodin/tg-care-reminder/pkg/db"
)

type ScheduleType string

const (
	ScheduleSpecificTimes ScheduleType = "specific_times"
	ScheduleInterval      ScheduleType = "interval"
)

// MinIntervalMinutes is the floor for interval schedules and snoozes.
const MinIntervalMinutes = 15

// Schedule is the decoded firing rule of a reminder. Time-of-day fields are
// zero-padded "HH:MM" strings, which compare correctly as plain strings.
type Schedule struct {
	Type            ScheduleType
	IntervalMinutes int
	Times           TimeSet
	ActiveFrom      string
	ActiveTo        string
	Timezone        string
}

// TimeSet is a validated set of "HH:MM" labels.
type TimeSet []string

// ParseTimeSet decodes a JSON array of time labels, rejecting anything that
// is not a well-formed zero-padded "HH:MM".
func ParseTimeSet(raw []byte) (TimeSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, err
	}
	for _, label := range labels {
		if _, ok := minutesOf(label); !ok {
			return nil, ErrInvalidSchedule
		}
	}
	return TimeSet(labels), nil
}

func (ts TimeSet) Contains(label string) bool {
	for _, t := range ts {
		if t == label {
			return true
		}
	}
	return false
}

// minutesOf converts a zero-padded "HH:MM" label to minutes since midnight.
func minutesOf(label string) (int, bool) {
	if len(label) != 5 || label[2] != ':' {
		return 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if label[i] < '0' || label[i] > '9' {
			return 0, false
		}
	}
	hours := int(label[0]-'0')*10 + int(label[1]-'0')
	minutes := int(label[3]-'0')*10 + int(label[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// ShouldFire reports whether a schedule fires at the given "HH:MM" label.
// It is pure and fail-safe: malformed schedule data yields false, never an
// error, so one bad config cannot stall the check loop.
func ShouldFire(s Schedule, timeLabel string) bool {
	if s.ActiveFrom != "" && s.ActiveTo != "" {
		if timeLabel < s.ActiveFrom || timeLabel > s.ActiveTo {
			return false
		}
	}

	switch s.Type {
	case ScheduleSpecificTimes:
		return s.Times.Contains(timeLabel)
	case ScheduleInterval:
		if s.IntervalMinutes < MinIntervalMinutes {
			return false
		}
		start := 0
		if s.ActiveFrom != "" {
			if m, ok := minutesOf(s.ActiveFrom); ok {
				start = m
			}
		}
		current, ok := minutesOf(timeLabel)
		if !ok {
			return false
		}
		elapsed := current - start
		return elapsed >= 0 && elapsed%s.IntervalMinutes == 0
	default:
		return false
	}
}

// Valid reports whether the schedule is accepted by the settings surface.
// The evaluator itself never relies on this; it degrades to false instead.
func (s Schedule) Valid() bool {
	switch s.Type {
	case ScheduleSpecificTimes:
		if len(s.Times) == 0 {
			return false
		}
		for _, label := range s.Times {
			if _, ok := minutesOf(label); !ok {
				return false
			}
		}
	case ScheduleInterval:
		if s.IntervalMinutes < MinIntervalMinutes {
			return false
		}
	default:
		return false
	}
	for _, label := range []string{s.ActiveFrom, s.ActiveTo} {
		if label == "" {
			continue
		}
		if _, ok := minutesOf(label); !ok {
			return false
		}
	}
	return true
}

func (s Schedule) timesJSON() ([]byte, error) {
	if len(s.Times) == 0 {
		return nil, nil
	}
	return json.Marshal([]string(s.Times))
}

func scheduleFromRow(row db.ReminderSchedule) Schedule {
	times, err := ParseTimeSet(row.Times)
	if err != nil {
		times = nil
	}
	return Schedule{
		Type:            ScheduleType(row.ScheduleType),
		IntervalMinutes: row.IntervalMinutes,
		Times:           times,
		ActiveFrom:      row.ActiveFrom,
		ActiveTo:        row.ActiveTo,
		Timezone:        row.Timezone,
	}
}

func scheduleFromMotivationRow(row db.MotivationSchedule) Schedule {
	times, err := ParseTimeSet(row.Times)
	if err != nil {
		times = nil
	}
	return Schedule{
		Type:            ScheduleType(row.ScheduleType),
		IntervalMinutes: row.IntervalMinutes,
		Times:           times,
		ActiveFrom:      row.ActiveFrom,
		ActiveTo:        row.ActiveTo,
		Timezone:        row.Timezone,
	}
}
