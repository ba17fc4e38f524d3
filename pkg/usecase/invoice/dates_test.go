package invoice_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/invo/pkg/usecase/invoice"
)

func TestConvertSAPDate(t *testing.T) {
	// Noon UTC timestamps so the expected date holds in any local zone
	testCases := map[string]struct {
		input    string
		expected string
	}{
		"epoch date": {
			input:    "/Date(1609502400000)/", // 2021-01-01T12:00:00Z
			expected: "2021-01-01",
		},
		"another epoch date": {
			input:    "/Date(1718712000000)/", // 2024-06-18T12:00:00Z
			expected: "2024-06-18",
		},
		"already formatted date passes through": {
			input:    "2024-05-01",
			expected: "2024-05-01",
		},
		"arbitrary text passes through": {
			input:    "not a date",
			expected: "not a date",
		},
		"empty string passes through": {
			input:    "",
			expected: "",
		},
		"negative payload does not match pattern": {
			input:    "/Date(-1000)/",
			expected: "/Date(-1000)/",
		},
		"overflowing payload passes through": {
			input:    "/Date(99999999999999999999)/",
			expected: "/Date(99999999999999999999)/",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Equal(t, invoice.ConvertSAPDate(tc.input), tc.expected)
		})
	}
}

func TestConvertSAPDateEmbedded(t *testing.T) {
	// The pattern may appear inside surrounding text; only the match is used
	gt.Equal(t, invoice.ConvertSAPDate("updated /Date(1718712000000)/ recently"), "2024-06-18")
}
