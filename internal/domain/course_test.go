package domain

import "testing"

func TestTrailingMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"Microeconomics [Online]", "Online"},
		{"Microeconomics (on-demand) ", "on-demand"},
		{"ミクロ経済学【オンライン】", "オンライン"},
		{"ミクロ経済学（オンデマンド）", "オンデマンド"},
		{"Microeconomics", ""},
		{"[Online] Microeconomics", ""},
		{"Broken ]", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			if got := TrailingMarker(tt.title); got != tt.want {
				t.Errorf("TrailingMarker(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestDeliveryModeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  DeliveryMode
	}{
		{"Statistics I [Online]", DeliveryModeOnline},
		{"Statistics I [ONLINE]", DeliveryModeOnline},
		{"Statistics I (Remote)", DeliveryModeOnline},
		{"統計学【オンデマンド】", DeliveryModeOnline},
		{"Statistics I [Lab]", DeliveryModeInPerson},
		{"Statistics I", DeliveryModeInPerson},
		{"Online Marketing", DeliveryModeInPerson},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			if got := DeliveryModeOf(tt.title); got != tt.want {
				t.Errorf("DeliveryModeOf(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSchedule_HasPeriod(t *testing.T) {
	t.Parallel()

	s := Schedule{Day: Monday, Periods: []int{2, 3}}
	if !s.HasPeriod(3) {
		t.Error("HasPeriod(3) = false, want true")
	}
	if s.HasPeriod(4) {
		t.Error("HasPeriod(4) = true, want false")
	}
}
