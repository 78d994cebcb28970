package kernelpc

import "testing"

func TestLatencyNS(t *testing.T) {
	tests := []struct {
		name                                string
		latencyCycles, totalCycles, totalNS uint64
		want                                float64
	}{
		{"zero total cycles", 10, 0, 1000, 0},
		{"one ns per cycle", 5, 100, 100, 5},
		{"fractional ns per cycle", 4, 200, 100, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := latencyNS(tt.latencyCycles, tt.totalCycles, tt.totalNS); got != tt.want {
				t.Errorf("latencyNS(%d, %d, %d) = %v, want %v", tt.latencyCycles, tt.totalCycles, tt.totalNS, got, tt.want)
			}
		})
	}
}

func TestResultFrom(t *testing.T) {
	a := Args{
		OutLatencyCycleLd: 10,
		OutLatencyCycleSt: 20,
		OutTotalCycleLd:   100,
		OutTotalCycleSt:   100,
		OutTotalNsLd:      200,
		OutTotalNsSt:      200,
	}
	got := resultFrom(a)
	want := Result{
		LatencyCyclesLoad:  10,
		LatencyCyclesStore: 20,
		LatencyNSLoad:      20,
		LatencyNSStore:     40,
	}
	if got != want {
		t.Errorf("resultFrom(%+v) = %+v, want %+v", a, got, want)
	}
}
