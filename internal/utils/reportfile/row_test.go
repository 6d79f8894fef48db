package reportfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":            "0",
		"  ":          "0",
		"-":           "0",
		"abc":         "0",
		"12":          "12",
		"$1,234.50":   "1234.5",
		"(12.00)":     "-12",
		"$ 7.25":      "7.25",
		"1\u00a0000":  "1000",
		"-3.5":        "-3.5",
		"($1,000.10)": "-1000.1",
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAmount(in).String(), "input %q", in)
	}
}

func TestRow_Accessors(t *testing.T) {
	r := &Row{Data: map[string]string{"Qty": "12.0", "Name": "", "Rev": "$3.10"}}
	assert.Equal(t, int64(12), r.Int("Qty"))
	assert.Equal(t, int64(0), r.Int("Missing"))
	assert.Equal(t, "n/a", r.GetOrDefault("Name", "n/a"))
	assert.Equal(t, "3.1", r.Decimal("Rev").String())
	assert.False(t, r.IsEmpty())
	assert.True(t, (&Row{Data: map[string]string{"a": ""}}).IsEmpty())
}
