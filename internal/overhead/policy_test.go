package overhead

import "testing"

type stubSource struct {
	processing, staged bool
}

func (s stubSource) Processing() bool { return s.processing }
func (s stubSource) PollNew() bool    { return s.staged }

func TestShouldRefresh(t *testing.T) {
	tests := []struct {
		name     string
		src      stubSource
		allShown bool
		shownLen int
		expected bool
	}{
		{"idle, nothing shown yet", stubSource{}, false, 0, true},
		{"idle, single flight", stubSource{}, false, 1, true},
		{"idle, carousel mid-way", stubSource{}, false, 3, false},
		{"idle, carousel cycled", stubSource{}, true, 3, true},
		{"in flight", stubSource{processing: true}, true, 0, false},
		{"staged waiting", stubSource{staged: true}, true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRefresh(tt.src, tt.allShown, tt.shownLen); got != tt.expected {
				t.Fatalf("ShouldRefresh = %v, want %v", got, tt.expected)
			}
		})
	}
}
