package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantErr    bool
		wantPrefix string
	}{
		{
			name:       "generate daemon instance ID",
			prefix:     "sync",
			length:     16,
			wantErr:    false,
			wantPrefix: "sync_",
		},
		{
			name:       "generate provider ID",
			prefix:     "prov",
			length:     16,
			wantErr:    false,
			wantPrefix: "prov_",
		},
		{
			name:       "generate short ID",
			prefix:     "test",
			length:     8,
			wantErr:    false,
			wantPrefix: "test_",
		},
		{
			name:       "generate long ID",
			prefix:     "test",
			length:     32,
			wantErr:    false,
			wantPrefix: "test_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureID(tt.prefix, tt.length)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateSecureID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				// Check prefix
				if !strings.HasPrefix(got, tt.wantPrefix) {
					t.Errorf("GenerateSecureID() = %v, want prefix %v", got, tt.wantPrefix)
				}
				// Check total length (prefix + underscore + random chars)
				expectedLen := len(tt.prefix) + 1 + tt.length
				if len(got) != expectedLen {
					t.Errorf("GenerateSecureID() length = %v, want %v", len(got), expectedLen)
				}
				// Check character set (only 0-9a-z after prefix_)
				suffix := got[len(tt.prefix)+1:]
				for _, char := range suffix {
					if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
						t.Errorf("GenerateSecureID() contains invalid character: %c", char)
					}
				}
			}
		})
	}
}

func TestGenerateSecureID_Uniqueness(t *testing.T) {
	const iterations = 10000
	seen := make(map[string]bool)

	for i := 0; i < iterations; i++ {
		id, err := GenerateSecureID("sync", 16)
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if seen[id] {
			t.Errorf("GenerateSecureID() generated duplicate ID: %v", id)
		}
		seen[id] = true
	}

	if len(seen) != iterations {
		t.Errorf("Expected %d unique IDs, got %d", iterations, len(seen))
	}
}

func TestValidateIDFormat(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		expectedPrefix string
		want           bool
	}{
		{
			name:           "valid instance ID",
			id:             "sync_a3f8d2k9p1m4n7q2",
			expectedPrefix: "sync",
			want:           true,
		},
		{
			name:           "valid provider ID",
			id:             "prov_c4d8e1f5g9h2j6k3",
			expectedPrefix: "prov",
			want:           true,
		},
		{
			name:           "wrong prefix",
			id:             "sync_a3f8d2k9p1m4n7q2",
			expectedPrefix: "prov",
			want:           false,
		},
		{
			name:           "missing underscore",
			id:             "synca3f8d2k9p1m4n7q2",
			expectedPrefix: "sync",
			want:           false,
		},
		{
			name:           "empty suffix",
			id:             "sync_",
			expectedPrefix: "sync",
			want:           false,
		},
		{
			name:           "invalid characters (uppercase)",
			id:             "sync_A3F8D2K9P1M4N7Q2",
			expectedPrefix: "sync",
			want:           false,
		},
		{
			name:           "invalid characters (special chars)",
			id:             "sync_a3f8-d2k9-p1m4",
			expectedPrefix: "sync",
			want:           false,
		},
		{
			name:           "invalid characters (underscore in suffix)",
			id:             "sync_a3f8_d2k9",
			expectedPrefix: "sync",
			want:           false,
		},
		{
			name:           "empty ID",
			id:             "",
			expectedPrefix: "sync",
			want:           false,
		},
		{
			name:           "only prefix",
			id:             "sync",
			expectedPrefix: "sync",
			want:           false,
		},
		{
			name:           "numbers only suffix",
			id:             "test_123456789",
			expectedPrefix: "test",
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateIDFormat(tt.id, tt.expectedPrefix); got != tt.want {
				t.Errorf("ValidateIDFormat(%q, %q) = %v, want %v", tt.id, tt.expectedPrefix, got, tt.want)
			}
		})
	}
}

func TestValidateIDFormat_GeneratedIDs(t *testing.T) {
	// Test that all generated IDs pass validation
	prefixes := []string{"sync", "prov", "req"}
	lengths := []int{8, 16, 32}

	for _, prefix := range prefixes {
		for _, length := range lengths {
			id, err := GenerateSecureID(prefix, length)
			if err != nil {
				t.Fatalf("GenerateSecureID() error = %v", err)
			}
			if !ValidateIDFormat(id, prefix) {
				t.Errorf("Generated ID %q failed validation with prefix %q", id, prefix)
			}
		}
	}
}

func BenchmarkGenerateSecureID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := GenerateSecureID("sync", 16)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidateIDFormat(b *testing.B) {
	id := "sync_a3f8d2k9p1m4n7q2"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ValidateIDFormat(id, "sync")
	}
}
