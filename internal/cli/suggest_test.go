package cli

import "testing"

func TestSuggestCategory(t *testing.T) {
	known := []string{"Food", "Housing", "Transportation", "Entertainment"}

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"close typo", "Fod", "Food", true},
		{"case difference only means exact match", "food", "", false},
		{"exact match needs no hint", "Food", "", false},
		{"nothing close", "Xylophone", "", false},
		{"picks the closest", "Husing", "Housing", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestCategory(tt.input, known)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("SuggestCategory(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
