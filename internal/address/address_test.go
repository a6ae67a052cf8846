package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipient = "0xC0801ADA1Dc5EE235D154518DCcCd2e41793EbF8"

func TestIsValid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"recipient", recipient, true},
		{"lowercase", strings.ToLower(recipient), true},
		{"non hex still passes shape check", "0x" + strings.Repeat("z", 40), true},
		{"empty", "", false},
		{"missing prefix", "00" + recipient[2:], false},
		{"upper prefix", "0X" + recipient[2:], false},
		{"41 chars", recipient[:41], false},
		{"43 chars", recipient + "0", false},
		{"prefix only", "0x", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValid(tc.in))
		})
	}
}

func TestToCommon(t *testing.T) {
	a, err := ToCommon(recipient)
	require.NoError(t, err)
	assert.Equal(t, recipient, a.Hex())

	_, err = ToCommon("0x" + strings.Repeat("z", 40))
	assert.Error(t, err)

	_, err = ToCommon(recipient[:41])
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(strings.ToLower(recipient[2:]))
	require.NoError(t, err)
	assert.Equal(t, recipient, got)

	_, err = Normalize("  ")
	assert.Error(t, err)

	_, err = Normalize("0x1234")
	assert.Error(t, err)
}
