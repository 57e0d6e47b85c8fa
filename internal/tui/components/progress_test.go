package components

import "testing"

func TestLevelFor(t *testing.T) {
	cases := []struct {
		name       string
		pct        float64
		warn, crit float64
		want       Level
	}{
		{"below warn", 50, 75, 90, LevelOK},
		{"at warn", 75, 75, 90, LevelWarn},
		{"between", 80, 75, 90, LevelWarn},
		{"at crit", 90, 75, 90, LevelCrit},
		{"over 100", 130, 75, 90, LevelCrit},
		{"thresholds disabled", 99, 0, 0, LevelOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LevelFor(tc.pct, tc.warn, tc.crit); got != tc.want {
				t.Errorf("LevelFor(%v, %v, %v) = %v, want %v", tc.pct, tc.warn, tc.crit, got, tc.want)
			}
		})
	}
}
