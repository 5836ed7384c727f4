package utils

import (
	"strings"
	"testing"

	"github.com/crackit-game/crackit/pkg/models"
)

func TestGenerateLoginCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateLoginCode()
		if err != nil {
			t.Fatalf("GenerateLoginCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		if !IsValidLoginCode(code) {
			t.Fatalf("generated code %q is not all digits", code)
		}
		if code[0] == '0' {
			t.Fatalf("code %q outside [100000, 999999]", code)
		}
	}
}

func TestGenerateSolution(t *testing.T) {
	tests := []struct {
		pattern models.SolutionPattern
		length  int
	}{
		{models.PatternNumbers8, 8},
		{models.PatternAlnum10, 10},
		{models.PatternNumbers12, 12},
		{models.PatternAlnum16, 16},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			solution, err := GenerateSolution(tt.pattern)
			if err != nil {
				t.Fatalf("GenerateSolution failed: %v", err)
			}
			if len(solution) != tt.length {
				t.Fatalf("expected length %d, got %d", tt.length, len(solution))
			}
			alphabet := tt.pattern.Alphabet()
			for _, c := range solution {
				if len(c) != 1 || !strings.Contains(alphabet, c) {
					t.Fatalf("character %q not in alphabet %q", c, alphabet)
				}
			}
		})
	}
}

func TestGenerateSolution_UnknownPattern(t *testing.T) {
	if _, err := GenerateSolution("LETTERS99"); err == nil {
		t.Fatal("expected error for unknown pattern")
	}
}
