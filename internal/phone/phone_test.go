package phone

import "testing"

func TestForTwilio(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare digits", "551199998888", "whatsapp:+551199998888"},
		{"with plus", "+551199998888", "whatsapp:+551199998888"},
		{"already prefixed", "whatsapp:+551199998888", "whatsapp:+551199998888"},
		{"prefixed without plus", "whatsapp:551199998888", "whatsapp:551199998888"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForTwilio(tt.input); got != tt.want {
				t.Errorf("ForTwilio(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestForMeta(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"with plus", "+551199998888", "551199998888"},
		{"transport prefix", "whatsapp:+551199998888", "551199998888"},
		{"bare digits", "551199998888", "551199998888"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForMeta(tt.input); got != tt.want {
				t.Errorf("ForMeta(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFixBrazilMobile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"twelve digits missing nine", "557591234567", "5575991234567"},
		{"thirteen digits unchanged", "5575991234567", "5575991234567"},
		{"not brazil", "441171234567", "441171234567"},
		{"too short", "5575", "5575"},
		{"non digit content", "55759123456a", "55759123456a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixBrazilMobile(tt.input); got != tt.want {
				t.Errorf("FixBrazilMobile(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
