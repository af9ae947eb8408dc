package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		msg        string
		wantAdd    bool
		wantModify bool
	}{
		{"add study for exam on dec 20", true, false},
		{"remind me to call mom", true, false},
		{"put this on my calendar", true, false},
		{"schedule a review", true, false},
		{"move the meeting to friday", false, true},
		{"reschedule it", true, true}, // "reschedule" contains "schedule"
		{"fix the date", false, true},
		{"change it to the 5th", false, true},
		{"hello there", false, false},
		{"what is the weather", false, false},
	}
	for _, tt := range tests {
		got := Classify(tt.msg)
		if got.WantsAdd != tt.wantAdd || got.WantsModify != tt.wantModify {
			t.Errorf("Classify(%q) = %+v, want add=%v modify=%v", tt.msg, got, tt.wantAdd, tt.wantModify)
		}
		if got.WantsCalendarAction != (tt.wantAdd || tt.wantModify) {
			t.Errorf("Classify(%q): WantsCalendarAction inconsistent", tt.msg)
		}
	}
}

// Multiple signals may hold at once; callers pick precedence.
func TestClassify_Independent(t *testing.T) {
	got := Classify("update the reminder")
	if !got.WantsAdd || !got.WantsModify {
		t.Fatalf("got %+v, want both add and modify", got)
	}
}

func TestIsSkip(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"skip", true},
		{"  Skip  ", true},
		{"skip this step", true},
		{"next", true},
		{"pass", true},
		{"skip the small talk and tell me everything", false},
		{"no", false},
	}
	for _, tt := range tests {
		if got := IsSkip(tt.msg); got != tt.want {
			t.Errorf("IsSkip(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestIsDone(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"done", true},
		{"I finished it", true},
		{"all set now", true},
		{"it's configured", true},
		{"set up and working", true},
		{"still working on it", false},
	}
	for _, tt := range tests {
		if got := IsDone(tt.msg); got != tt.want {
			t.Errorf("IsDone(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestIsStatusQuestion(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"what's my onboarding status?", true},
		{"which onboarding step am I on", true},
		{"how is onboarding progress", true},
		{"what's my status", false}, // no "onboarding"
		{"onboarding", false},       // no step/status/progress
	}
	for _, tt := range tests {
		if got := IsStatusQuestion(tt.msg); got != tt.want {
			t.Errorf("IsStatusQuestion(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
