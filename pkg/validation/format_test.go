package validation

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{name: "Valid pretty format", format: "pretty"},
		{name: "Valid csv format", format: "csv"},
		{name: "Valid json format", format: "json"},
		{name: "Valid yaml format", format: "yaml"},
		{name: "Invalid format", format: "xml", expectErr: true},
		{name: "Empty format", format: "", expectErr: true},
		{name: "Case sensitive - uppercase", format: "PRETTY", expectErr: true},
		{name: "Case sensitive - CSV uppercase", format: "CSV", expectErr: true},
		{name: "Leading/trailing spaces", format: " pretty ", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateOutputFormat(%q) expected error but got none", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateOutputFormat(%q) unexpected error: %v", tt.format, err)
			}
		})
	}
}

func TestValidateStartMonth(t *testing.T) {
	valid := []string{"", "2025-01", "1999-12"}
	for _, value := range valid {
		if err := ValidateStartMonth(value); err != nil {
			t.Errorf("ValidateStartMonth(%q) unexpected error: %v", value, err)
		}
	}

	invalid := []string{"2025", "2025-13", "01-2025", "next month"}
	for _, value := range invalid {
		if err := ValidateStartMonth(value); err == nil {
			t.Errorf("ValidateStartMonth(%q) expected error but got none", value)
		}
	}
}
