package clock

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("2024-02-29 is a valid leap day: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("round trip = %s", d)
	}

	for _, bad := range []string{"2023-02-29", "2024-13-01", "2024-1-1", "01-01-2024", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestDateWeekday(t *testing.T) {
	// 2024-01-01 was a Monday.
	if got := MustDate("2024-01-01").Weekday(); got != time.Monday {
		t.Errorf("weekday = %s, want Monday", got)
	}
	if got := MustDate("2024-01-07").Weekday(); got != time.Sunday {
		t.Errorf("weekday = %s, want Sunday", got)
	}
}

func TestDateAddDays(t *testing.T) {
	// The referral window: 90 days from issuance.
	if got := MustDate("2024-01-01").AddDays(90); got != MustDate("2024-03-31") {
		t.Errorf("2024-01-01 + 90 days = %s, want 2024-03-31", got)
	}
	// Across a non-leap February.
	if got := MustDate("2023-01-01").AddDays(90); got != MustDate("2023-04-01") {
		t.Errorf("2023-01-01 + 90 days = %s, want 2023-04-01", got)
	}
	if got := MustDate("2024-03-01").AddDays(-1); got != MustDate("2024-02-29") {
		t.Errorf("2024-03-01 - 1 day = %s, want 2024-02-29", got)
	}
}

func TestDateOrdering(t *testing.T) {
	a := MustDate("2024-06-01")
	b := MustDate("2024-06-02")
	if !a.Before(b) || a.After(b) || a.Before(a) {
		t.Error("date ordering is wrong")
	}
	if a.DaysUntil(b) != 1 || b.DaysUntil(a) != -1 {
		t.Error("DaysUntil is wrong")
	}
}

func TestDatesBetween(t *testing.T) {
	got := DatesBetween(MustDate("2024-06-01"), MustDate("2024-06-03"))
	if len(got) != 3 {
		t.Fatalf("got %d dates, want 3", len(got))
	}
	if got[0] != MustDate("2024-06-01") || got[2] != MustDate("2024-06-03") {
		t.Errorf("range endpoints wrong: %v", got)
	}

	if got := DatesBetween(MustDate("2024-06-03"), MustDate("2024-06-01")); len(got) != 0 {
		t.Errorf("inverted range should be empty, got %v", got)
	}
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(MustDate("2024-12-25"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-12-25"` {
		t.Errorf("marshal = %s", data)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2025-01-31"`), &d); err != nil {
		t.Fatal(err)
	}
	if d != MustDate("2025-01-31") {
		t.Errorf("unmarshal = %s", d)
	}
}
