package utils

import "testing"

func TestValidateTimezone(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "UTC", timezone: "UTC", wantErr: false},
		{name: "IANA name", timezone: "America/New_York", wantErr: false},
		{name: "another IANA name", timezone: "Asia/Kolkata", wantErr: false},
		{name: "empty", timezone: "", wantErr: true},
		{name: "garbage", timezone: "Not/AZone", wantErr: true},
		{name: "abbreviation-like", timezone: "EST5EDT7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimezone(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if got := IsValidTimezone(tt.timezone); got == tt.wantErr {
				t.Errorf("IsValidTimezone(%q) = %v, want %v", tt.timezone, got, !tt.wantErr)
			}
		})
	}
}
