package utils

import (
	"testing"
	"time"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"0901234567",
		"0321234567",
		"+84901234567",
		"090 123 4567",
		"090-123-4567",
		"(090)1234567",
		"01234567890",
	}
	for _, phone := range valid {
		if !ValidatePhone(phone) {
			t.Errorf("ValidatePhone(%q) = false, want true", phone)
		}
	}

	invalid := []string{
		"",
		"12345",
		"090123456",
		"090123456789",
		"+85901234567",
		"09012345ab",
		"phone",
	}
	for _, phone := range invalid {
		if ValidatePhone(phone) {
			t.Errorf("ValidatePhone(%q) = true, want false", phone)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("staff@example.com") {
		t.Error("plain address rejected")
	}
	for _, email := range []string{"", "no-at-sign", "two@@example.com", "spaces in@example.com", "missing@tld"} {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestValidateImageURL(t *testing.T) {
	if !ValidateImageURL("https://res.cloudinary.com/demo/image/upload/v1/folder/pic.jpg") {
		t.Error("delivery url rejected")
	}
	if ValidateImageURL("not a url at all") {
		t.Error("free text accepted")
	}
}

func TestDayBoundaries(t *testing.T) {
	at := time.Date(2024, 3, 15, 14, 30, 45, 123456789, time.Local)

	start := BeginningOfDay(at)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		t.Errorf("BeginningOfDay = %v, want midnight", start)
	}
	if start.Year() != 2024 || start.Month() != time.March || start.Day() != 15 {
		t.Errorf("BeginningOfDay moved the date: %v", start)
	}

	end := EndOfDay(at)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDay = %v, want 23:59:59", end)
	}
	if !end.After(at) {
		t.Errorf("EndOfDay %v must not precede %v", end, at)
	}
	if end.Day() != 15 {
		t.Errorf("EndOfDay moved the date: %v", end)
	}
}

func TestIsAfterToday(t *testing.T) {
	now := time.Now()

	if IsAfterToday(now) {
		t.Error("current moment reported as future")
	}
	// Late tonight is still today.
	if IsAfterToday(EndOfDay(now)) {
		t.Error("end of today reported as future")
	}
	if !IsAfterToday(now.AddDate(0, 0, 1)) {
		t.Error("tomorrow not reported as future")
	}
	if IsAfterToday(now.AddDate(0, 0, -1)) {
		t.Error("yesterday reported as future")
	}
}

// A YYYY-MM-DD string parsed without a location carries UTC; on a server
// east of UTC that instant is already "yesterday evening" local time. Only
// the calendar date may count.
func TestIsAfterToday_LocationIndependent(t *testing.T) {
	todayUTC, err := time.Parse("2006-01-02", time.Now().Format("2006-01-02"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if IsAfterToday(todayUTC) {
		t.Error("today's date parsed as UTC reported as future")
	}
	if !IsAfterToday(todayUTC.AddDate(0, 0, 1)) {
		t.Error("tomorrow's date parsed as UTC not reported as future")
	}
	if IsAfterToday(todayUTC.AddDate(0, 0, -1)) {
		t.Error("yesterday's date parsed as UTC reported as future")
	}
}
