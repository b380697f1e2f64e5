package clock

import (
	"encoding/json"
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: "9:5", want: "09:05"},
		{in: "00:00", want: "00:00"},
		{in: "23:59", want: "23:59"},
		{in: " 08:30 ", want: "08:30"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "-1:00", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "12", wantErr: true},
		{in: "", wantErr: true},
		{in: ":30", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayAdd(t *testing.T) {
	start := MustTimeOfDay("09:00")

	end, ok := start.Add(45)
	if !ok || end.String() != "09:45" {
		t.Fatalf("09:00 + 45min = %s (ok=%t), want 09:45", end, ok)
	}

	if _, ok := MustTimeOfDay("23:45").Add(45); ok {
		t.Error("23:45 + 45min should not fit within the day")
	}
	if end, ok := MustTimeOfDay("23:30").Add(30); !ok || end != 24*60 {
		t.Errorf("23:30 + 30min should land exactly on end of day, got %v ok=%t", end, ok)
	}
	if _, ok := start.Add(-600); ok {
		t.Error("subtracting past midnight should not be allowed")
	}
}

func TestTimeOfDayOrdering(t *testing.T) {
	a := MustTimeOfDay("08:00")
	b := MustTimeOfDay("08:30")

	if !a.Before(b) || b.Before(a) {
		t.Error("08:00 must sort before 08:30")
	}
	if a.Before(a) || a.After(a) {
		t.Error("a time must not sort before or after itself")
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(MustTimeOfDay("07:15"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"07:15"` {
		t.Errorf("marshal = %s, want \"07:15\"", data)
	}

	var parsed TimeOfDay
	if err := json.Unmarshal([]byte(`"16:45"`), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.String() != "16:45" {
		t.Errorf("unmarshal = %s, want 16:45", parsed)
	}

	if err := json.Unmarshal([]byte(`"25:00"`), &parsed); err == nil {
		t.Error("unmarshal of out-of-range hour should fail")
	}
}
