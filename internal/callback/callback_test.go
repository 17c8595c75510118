package callback

import (
	"strings"
	"testing"

	"storebot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{name: "tag only", action: New(TagProducts), want: "list"},
		{name: "one arg", action: New(TagProduct, "bio_tribesteron"), want: "med|bio_tribesteron"},
		{name: "two args", action: New(TagAdminStatus, "ab12cd34", "completed"), want: "adm_status|ab12cd34|completed"},
		{name: "separator in arg", action: New(TagAdminField, "a|b", "name"), want: "adm_field|a%7Cb|name"},
		{name: "percent in arg", action: New(TagProduct, "50%"), want: "med|50%25"},
		{name: "empty arg", action: New(TagAdminOrders, ""), want: "adm_orders|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, encoded)

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.action.Tag, decoded.Tag)
			assert.Equal(t, len(tt.action.Args), len(decoded.Args))
			for i := range tt.action.Args {
				assert.Equal(t, tt.action.Args[i], decoded.Arg(i))
			}
		})
	}
}

func TestEncode_TooLong(t *testing.T) {
	_, err := Encode(New(TagProduct, strings.Repeat("x", MaxLen)))
	assert.True(t, errors.Is(err, ErrTooLong))

	assert.Panics(t, func() {
		MustEncode(TagProduct, strings.Repeat("x", MaxLen))
	})
}

func TestEncode_Empty(t *testing.T) {
	_, err := Encode(Action{})
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "empty", data: "", want: ErrEmpty},
		{name: "too long", data: strings.Repeat("a", MaxLen+1), want: ErrTooLong},
		{name: "truncated escape", data: "med|abc%7", want: ErrMalformed},
		{name: "unknown escape", data: "med|%41", want: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestArg_OutOfRange(t *testing.T) {
	a := New(TagMonths, "3")

	assert.Equal(t, "3", a.Arg(0))
	assert.Empty(t, a.Arg(1))
	assert.Empty(t, a.Arg(-1))
}

func TestDecode_LegacyPlainPayload(t *testing.T) {
	a, err := Decode("menu")
	require.NoError(t, err)
	assert.Equal(t, TagMainMenu, a.Tag)
	assert.Empty(t, a.Args)
}
