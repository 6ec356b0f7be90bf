package timetable

import (
	"testing"
	"time"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func newTestTimetable(t *testing.T, settings Settings) *Timetable {
	t.Helper()
	if settings.SlotStep == 0 {
		settings.SlotStep = 30 * time.Minute
	}
	if settings.Duration == 0 {
		settings.Duration = 2 * time.Hour
	}
	return New(DefaultWeeklyRules(), testLocation(t), settings)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    Clock
		wantErr bool
	}{
		{input: "19:30", want: Clock{19, 30}},
		{input: "19.30", want: Clock{19, 30}},
		{input: "1930", want: Clock{19, 30}},
		{input: " 09:00 ", want: Clock{9, 0}},
		{input: "24:00", wantErr: true},
		{input: "19-30", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseWeeklyRules(t *testing.T) {
	rules, err := ParseWeeklyRules("Mon=16:00-22:30; Sat=14:00-23:30")
	if err != nil {
		t.Fatalf("ParseWeeklyRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}
	if got := rules[time.Monday]; got != (Window{Clock{16, 0}, Clock{22, 30}}) {
		t.Errorf("rules[Monday] = %v", got)
	}
	if _, open := rules[time.Sunday]; open {
		t.Error("Sunday should be closed when absent from the rules string")
	}

	for _, bad := range []string{"", "Mon=22:00-16:00", "Fri=16:00", "Xxx=16:00-22:00"} {
		if _, err := ParseWeeklyRules(bad); err == nil {
			t.Errorf("ParseWeeklyRules(%q) expected error", bad)
		}
	}
}

func TestSlotsForDateClosedDay(t *testing.T) {
	loc := testLocation(t)
	rules := WeeklyRules{time.Friday: {Open: Clock{16, 0}, Last: Clock{23, 30}}}
	tt := New(rules, loc, Settings{SlotStep: 30 * time.Minute, Duration: 2 * time.Hour})

	// 02.06.2025 - понедельник, в правилах его нет
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	if slots := tt.SlotsForDate(monday); len(slots) != 0 {
		t.Errorf("SlotsForDate(closed day) = %v, want empty", slots)
	}
}

func TestSlotsForDateGrid(t *testing.T) {
	tt := newTestTimetable(t, Settings{})
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, testLocation(t))

	slots := tt.SlotsForDate(monday)
	if len(slots) == 0 {
		t.Fatal("SlotsForDate returned no slots for an open day")
	}

	open, last := Clock{16, 0}, Clock{22, 30}
	if slots[0] != open {
		t.Errorf("first slot = %v, want %v", slots[0], open)
	}
	if slots[len(slots)-1] != last {
		t.Errorf("last slot = %v, want %v", slots[len(slots)-1], last)
	}
	for i, slot := range slots {
		if slot.Minutes() < open.Minutes() || slot.Minutes() > last.Minutes() {
			t.Errorf("slot %v outside window [%v, %v]", slot, open, last)
		}
		if (slot.Minutes()-open.Minutes())%30 != 0 {
			t.Errorf("slot %v not reachable from %v by 30m steps", slot, open)
		}
		if i > 0 && slots[i].Minutes() <= slots[i-1].Minutes() {
			t.Errorf("slots not strictly increasing at %d: %v after %v", i, slots[i], slots[i-1])
		}
	}
	// 16:00..22:30 с шагом 30 минут: 14 слотов
	if len(slots) != 14 {
		t.Errorf("len(slots) = %d, want 14", len(slots))
	}
}

func TestSlotsForDateOpenEqualsLast(t *testing.T) {
	loc := testLocation(t)
	rules := WeeklyRules{time.Monday: {Open: Clock{18, 0}, Last: Clock{18, 0}}}
	tt := New(rules, loc, Settings{SlotStep: 30 * time.Minute, Duration: 2 * time.Hour})

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	slots := tt.SlotsForDate(monday)
	if len(slots) != 1 || slots[0] != (Clock{18, 0}) {
		t.Errorf("SlotsForDate(open == last) = %v, want exactly [18:00]", slots)
	}
}

func TestSlotsForDateNonPositiveStep(t *testing.T) {
	loc := testLocation(t)
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)

	for _, step := range []time.Duration{0, -30 * time.Minute} {
		tt := New(DefaultWeeklyRules(), loc, Settings{SlotStep: step, Duration: 2 * time.Hour})
		if slots := tt.SlotsForDate(monday); slots != nil {
			t.Errorf("SlotsForDate(step %v) = %v, want nil", step, slots)
		}
	}
}

func TestDateChoices(t *testing.T) {
	today := time.Date(2025, 6, 2, 12, 0, 0, 0, testLocation(t))

	tt := newTestTimetable(t, Settings{MinAdvanceDays: 1})
	choices := tt.DateChoices(today)
	if len(choices) != DateChoicesCount {
		t.Fatalf("len(choices) = %d, want %d", len(choices), DateChoicesCount)
	}
	first := time.Date(2025, 6, 3, 0, 0, 0, 0, testLocation(t))
	if !choices[0].Equal(first) {
		t.Errorf("choices[0] = %v, want %v", choices[0], first)
	}
	for i := 1; i < len(choices); i++ {
		if got := choices[i].Sub(choices[i-1]); got != 24*time.Hour {
			t.Errorf("choices not consecutive at %d: gap %v", i, got)
		}
	}
}

func TestDateChoicesOnlyTomorrow(t *testing.T) {
	tt := newTestTimetable(t, Settings{MinAdvanceDays: 1, OnlyTomorrow: true})
	today := time.Date(2025, 6, 2, 12, 0, 0, 0, testLocation(t))

	choices := tt.DateChoices(today)
	if len(choices) != 1 {
		t.Fatalf("len(choices) = %d, want 1", len(choices))
	}
	want := time.Date(2025, 6, 3, 0, 0, 0, 0, testLocation(t))
	if !choices[0].Equal(want) {
		t.Errorf("choices[0] = %v, want %v", choices[0], want)
	}
}

func TestDateChoicesExcludeBlocked(t *testing.T) {
	tt := newTestTimetable(t, Settings{
		MinAdvanceDays: 1,
		BlockedDates:   []string{"04.06.2025", "05.06.2025"},
	})
	today := time.Date(2025, 6, 2, 12, 0, 0, 0, testLocation(t))

	for _, d := range tt.DateChoices(today) {
		if tt.IsBlocked(d) {
			t.Errorf("blocked date %v offered to the guest", d)
		}
	}

	blocked := time.Date(2025, 6, 4, 0, 0, 0, 0, testLocation(t))
	if !tt.IsBlocked(blocked) {
		t.Error("IsBlocked(04.06.2025) = false, want true")
	}
	open := time.Date(2025, 6, 6, 0, 0, 0, 0, testLocation(t))
	if tt.IsBlocked(open) {
		t.Error("IsBlocked(06.06.2025) = true, want false")
	}
}

func TestReservationIntervalRoundTrip(t *testing.T) {
	loc := testLocation(t)
	tt := newTestTimetable(t, Settings{Duration: 2 * time.Hour})

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	slot := Clock{19, 30}

	starts, ends := tt.ReservationInterval(date, slot)
	if starts.Location() != time.UTC {
		t.Errorf("starts location = %v, want UTC", starts.Location())
	}
	if got := ends.Sub(starts); got != 2*time.Hour {
		t.Errorf("interval length = %v, want 2h", got)
	}

	back := starts.In(loc)
	if back.Year() != 2025 || back.Month() != time.June || back.Day() != 2 {
		t.Errorf("round-trip date = %v, want 02.06.2025", back)
	}
	if back.Hour() != slot.Hour || back.Minute() != slot.Minute {
		t.Errorf("round-trip time = %02d:%02d, want %v", back.Hour(), back.Minute(), slot)
	}
}

func TestDayBoundsUTC(t *testing.T) {
	loc := testLocation(t)
	tt := newTestTimetable(t, Settings{})

	date := time.Date(2025, 6, 2, 15, 41, 0, 0, loc)
	from, to := tt.DayBoundsUTC(date)

	if got := to.Sub(from); got != 24*time.Hour {
		t.Errorf("day window length = %v, want 24h", got)
	}
	// Москва UTC+3: локальная полночь 02.06 это 21:00 UTC прошлого дня
	wantFrom := time.Date(2025, 6, 1, 21, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
}

func TestMinDate(t *testing.T) {
	tt := newTestTimetable(t, Settings{MinAdvanceDays: 2})
	today := time.Date(2025, 6, 2, 23, 59, 0, 0, testLocation(t))

	want := time.Date(2025, 6, 4, 0, 0, 0, 0, testLocation(t))
	if got := tt.MinDate(today); !got.Equal(want) {
		t.Errorf("MinDate = %v, want %v", got, want)
	}
}

func TestParseDate(t *testing.T) {
	tt := newTestTimetable(t, Settings{})

	d, err := tt.ParseDate("02.06.2025")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	want := time.Date(2025, 6, 2, 0, 0, 0, 0, testLocation(t))
	if !d.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", d, want)
	}

	if _, err := tt.ParseDate("2025-06-02"); err == nil {
		t.Error("ParseDate(ISO format) expected error")
	}
}
