package timetable

import (
	"fmt"
	"strings"
	"time"
)

// Clock локальное время суток без привязки к дате.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock разбирает время в форматах HH:MM, HH.MM и HHMM.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15.04", "1504"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Clock{}, fmt.Errorf("parse clock %q: expected HH:MM", s)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes смещение от полуночи в минутах.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// After сообщает, позже ли c, чем other.
func (c Clock) After(other Clock) bool {
	return c.Minutes() > other.Minutes()
}

// Window дневное окно приёма броней: от открытия до последнего
// времени посадки включительно.
type Window struct {
	Open Clock
	Last Clock
}

// WeeklyRules окна приёма броней по дням недели.
// Отсутствие дня означает, что заведение в этот день закрыто.
type WeeklyRules map[time.Weekday]Window

// DefaultWeeklyRules часы приёма по умолчанию.
func DefaultWeeklyRules() WeeklyRules {
	return WeeklyRules{
		time.Monday:    {Open: Clock{16, 0}, Last: Clock{22, 30}},
		time.Tuesday:   {Open: Clock{16, 0}, Last: Clock{22, 30}},
		time.Wednesday: {Open: Clock{16, 0}, Last: Clock{22, 30}},
		time.Thursday:  {Open: Clock{16, 0}, Last: Clock{22, 30}},
		time.Friday:    {Open: Clock{16, 0}, Last: Clock{23, 30}},
		time.Saturday:  {Open: Clock{14, 0}, Last: Clock{23, 30}},
		time.Sunday:    {Open: Clock{14, 0}, Last: Clock{22, 30}},
	}
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// ParseWeeklyRules разбирает строку вида "Mon=16:00-22:30;Sat=14:00-23:30".
// Перечисленные дни открыты, остальные считаются закрытыми.
func ParseWeeklyRules(s string) (WeeklyRules, error) {
	rules := make(WeeklyRules)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, window, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("parse weekly rules: bad entry %q", part)
		}
		weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(day))]
		if !ok {
			return nil, fmt.Errorf("parse weekly rules: unknown weekday %q", day)
		}
		openStr, lastStr, ok := strings.Cut(window, "-")
		if !ok {
			return nil, fmt.Errorf("parse weekly rules: bad window %q", window)
		}
		open, err := ParseClock(openStr)
		if err != nil {
			return nil, fmt.Errorf("parse weekly rules: %w", err)
		}
		last, err := ParseClock(lastStr)
		if err != nil {
			return nil, fmt.Errorf("parse weekly rules: %w", err)
		}
		if open.After(last) {
			return nil, fmt.Errorf("parse weekly rules: open %s after last %s", open, last)
		}
		rules[weekday] = Window{Open: open, Last: last}
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("parse weekly rules: no entries in %q", s)
	}
	return rules, nil
}

// Settings параметры календаря, снятые с конфигурации при старте.
type Settings struct {
	SlotStep       time.Duration // шаг сетки слотов
	Duration       time.Duration // длительность одной брони
	MinAdvanceDays int           // минимум дней до визита
	OnlyTomorrow   bool          // принимать брони только на ближайшую дату
	BlockedDates   []string      // недоступные даты в формате ДД.ММ.ГГГГ
}

// DateChoicesCount сколько последовательных дат предлагается на выбор.
const DateChoicesCount = 10

// DateLayout формат календарной даты в диалоге и конфигурации.
const DateLayout = "02.01.2006"

// Timetable календарные правила заведения: часы приёма по дням недели,
// сетка слотов, горизонт бронирования и заблокированные даты. Все методы
// чистые, состояние неизменяемо после создания.
type Timetable struct {
	rules    WeeklyRules
	loc      *time.Location
	settings Settings
	blocked  map[string]struct{}
}

func New(rules WeeklyRules, loc *time.Location, settings Settings) *Timetable {
	blocked := make(map[string]struct{}, len(settings.BlockedDates))
	for _, d := range settings.BlockedDates {
		blocked[strings.TrimSpace(d)] = struct{}{}
	}
	return &Timetable{
		rules:    rules,
		loc:      loc,
		settings: settings,
		blocked:  blocked,
	}
}

// Location часовой пояс заведения.
func (t *Timetable) Location() *time.Location {
	return t.loc
}

// Window окно приёма для даты. Второй результат false, если день закрыт.
func (t *Timetable) Window(date time.Time) (Window, bool) {
	w, ok := t.rules[date.In(t.loc).Weekday()]
	return w, ok
}

// SlotsForDate доступные времена посадки для даты: от открытия до
// последнего времени включительно с шагом сетки. Для закрытого дня
// список пуст. Если открытие совпадает с последним временем, слот
// ровно один.
func (t *Timetable) SlotsForDate(date time.Time) []Clock {
	w, ok := t.Window(date)
	if !ok {
		return nil
	}
	step := int(t.settings.SlotStep / time.Minute)
	// Неположительный шаг сетку не образует
	if step <= 0 {
		return nil
	}
	var slots []Clock
	for m := w.Open.Minutes(); m <= w.Last.Minutes(); m += step {
		slots = append(slots, Clock{Hour: m / 60, Minute: m % 60})
	}
	return slots
}

// IsBookableSlot проверяет, что время входит в сетку слотов даты.
func (t *Timetable) IsBookableSlot(date time.Time, c Clock) bool {
	for _, slot := range t.SlotsForDate(date) {
		if slot == c {
			return true
		}
	}
	return false
}

// LocalDate отбрасывает время, оставляя полночь даты в зоне заведения.
func (t *Timetable) LocalDate(at time.Time) time.Time {
	local := at.In(t.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.loc)
}

// MinDate первая дата, на которую принимаются брони.
func (t *Timetable) MinDate(today time.Time) time.Time {
	return t.LocalDate(today).AddDate(0, 0, t.settings.MinAdvanceDays)
}

// DateChoices даты, предлагаемые на выбор: ближайшая доступная и далее
// подряд, заблокированные даты исключаются. В режиме "только завтра"
// дата ровно одна.
func (t *Timetable) DateChoices(today time.Time) []time.Time {
	first := t.MinDate(today)
	count := DateChoicesCount
	if t.settings.OnlyTomorrow {
		count = 1
	}
	var choices []time.Time
	for i := 0; i < count; i++ {
		d := first.AddDate(0, 0, i)
		if t.IsBlocked(d) {
			continue
		}
		choices = append(choices, d)
	}
	return choices
}

// OnlyTomorrow сообщает, ограничен ли приём одной ближайшей датой.
func (t *Timetable) OnlyTomorrow() bool {
	return t.settings.OnlyTomorrow
}

// IsBlocked проверяет дату по списку заблокированных. Сравнение идёт
// по самой дате, а не по пустоте сетки слотов: заблокированный день
// отклоняется даже если введён вручную.
func (t *Timetable) IsBlocked(date time.Time) bool {
	_, ok := t.blocked[date.In(t.loc).Format(DateLayout)]
	return ok
}

// ParseDate разбирает дату диалога в полночь зоны заведения.
func (t *Timetable) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), t.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: expected %s", s, DateLayout)
	}
	return d, nil
}

// SlotStartUTC абсолютный момент начала брони для локальной даты и слота.
func (t *Timetable) SlotStartUTC(date time.Time, c Clock) time.Time {
	local := date.In(t.loc)
	starts := time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, t.loc)
	return starts.UTC()
}

// ReservationInterval интервал [начало, конец) брони в UTC.
// Конец всегда отстоит от начала на длительность брони.
func (t *Timetable) ReservationInterval(date time.Time, c Clock) (time.Time, time.Time) {
	starts := t.SlotStartUTC(date, c)
	return starts, starts.Add(t.settings.Duration)
}

// DayBoundsUTC границы локального календарного дня [начало, конец) в UTC.
// Используются дневным лимитом заявок.
func (t *Timetable) DayBoundsUTC(date time.Time) (time.Time, time.Time) {
	from := t.LocalDate(date)
	return from.UTC(), from.AddDate(0, 0, 1).UTC()
}

// FormatLocal человекочитаемые дата и время в зоне заведения.
func (t *Timetable) FormatLocal(utc time.Time) string {
	return utc.In(t.loc).Format("02.01.2006 15:04")
}
