package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:05", want: 9*60 + 5},
		{in: "23:59", want: 23*60 + 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "09-00", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", MustParseTimeOfDay("09:05").String())
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	assert.Equal(t, "10:00", MustParseTimeOfDay("09:30").Add(30).String())
}

func TestNewSlot(t *testing.T) {
	s, err := NewSlot("09:00", "09:30")
	require.NoError(t, err)
	assert.Equal(t, 30, s.Duration())
	assert.Equal(t, "[09:00, 09:30)", s.String())

	_, err = NewSlot("09:30", "09:30")
	require.Error(t, err)

	_, err = NewSlot("10:00", "09:00")
	require.Error(t, err)

	_, err = NewSlot("bogus", "09:00")
	require.Error(t, err)
}
