package model

import (
	"fmt"
	"time"
)

const calendarDateLayout = "2006-01-02"

// CalendarDate タイムゾーンを持たない暦日
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCalendarDate "YYYY-MM-DD" 形式の文字列を解析
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(calendarDateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf 指定タイムゾーンにおける時刻の暦日
func DateOf(t time.Time, loc *time.Location) CalendarDate {
	y, m, d := t.In(loc).Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Start 指定タイムゾーンでのその日の 00:00:00
func (d CalendarDate) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// End 翌日の 00:00:00（夏時間の切り替え日は24時間にならない）
func (d CalendarDate) End(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc)
}

// Contains 時刻が [Start, End) に含まれるか
func (d CalendarDate) Contains(t time.Time, loc *time.Location) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(d.Start(loc)) && t.Before(d.End(loc))
}

// Before 暦日の比較
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// IsZero 未指定かどうか
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText JSONでは "YYYY-MM-DD" 文字列として出力する
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText "YYYY-MM-DD" 文字列から復元する
func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := ParseCalendarDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DayFilter 日付とタイムゾーンの組。タイムゾーンは常に明示する
// Dateがゼロ値の場合は絞り込まず、Locationで日ごとの内訳だけを作る
type DayFilter struct {
	Date     CalendarDate
	Location *time.Location
}

// NewDayFilter 日付文字列とIANAタイムゾーン名からDayFilterを作成
func NewDayFilter(date, timeZone string) (*DayFilter, error) {
	d, err := ParseCalendarDate(date)
	if err != nil {
		return nil, err
	}
	loc, err := LoadTimeZone(timeZone)
	if err != nil {
		return nil, err
	}
	return &DayFilter{Date: d, Location: loc}, nil
}

// LoadTimeZone IANAタイムゾーン名を読み込む。空文字はUTC
// "Local" はホストのタイムゾーンになるため受け付けない
func LoadTimeZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	if name == "Local" {
		return nil, fmt.Errorf("%w: %q (IANA名で指定してください)", ErrInvalidTimeZone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, name)
	}
	return loc, nil
}
