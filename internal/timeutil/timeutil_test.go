package timeutil

import (
	"testing"
	"time"
)

func TestParseDateKeyRoundTrip(t *testing.T) {
	parsed, err := ParseDateKey("20240115")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatDateKey(parsed); got != "20240115" {
		t.Fatalf("expected 20240115, got %s", got)
	}
}

func TestParseDateKeyRejectsDashes(t *testing.T) {
	if _, err := ParseDateKey("2024-01-15"); err == nil {
		t.Fatal("expected error for dashed date")
	}
}

func TestDateKeysBetweenInclusive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	keys := DateKeysBetween(start, end)
	want := []string{"20240101", "20240102", "20240103"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("expected %s at index %d, got %s", k, i, keys[i])
		}
	}
}

func TestDateKeysBetweenSingleDay(t *testing.T) {
	day := time.Date(2024, 2, 29, 15, 4, 5, 0, time.UTC)
	keys := DateKeysBetween(day, day)
	if len(keys) != 1 || keys[0] != "20240229" {
		t.Fatalf("expected single key 20240229, got %v", keys)
	}
}

func TestDateKeysBetweenReversedReturnsNil(t *testing.T) {
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if keys := DateKeysBetween(start, end); keys != nil {
		t.Fatalf("expected nil for reversed range, got %v", keys)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"12:00", 12 * time.Minute, false},
		{"2:30", 2*time.Minute + 30*time.Second, false},
		{"0:00", 0, false},
		{"", 0, true},
		{"1200", 0, true},
		{"12:75", 0, true},
		{"-1:00", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("clock %q: expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
