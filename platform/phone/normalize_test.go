package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already e164", "+919876543210", "+919876543210"},
		{"national format gets default region", "09876543210", "+919876543210"},
		{"spaces and dashes stripped", "+91 98765-43210", "+919876543210"},
		{"garbage passes through", "call me maybe", "call me maybe"},
		{"empty stays empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input); got != tt.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
