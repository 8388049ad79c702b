package errors

import "testing"

func TestValidateOutputName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "api_graph", false},
		{"with dots", "petstore.v2", false},
		{"empty", "", true},
		{"traversal", "../api_graph", true},
		{"slash", "out/api_graph", true},
		{"backslash", `out\api_graph`, true},
		{"control char", "api\ngraph", true},
		{"too long", string(make([]byte, 201)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}
