package usage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuel/internal/types"
)

func TestBatch_RoundTripPlainAndCompressed(t *testing.T) {
	batch := NewBatch(testDay, FixedDay(testDay))
	assert.Equal(t, "2026-10-14", batch.Date)

	for _, compress := range []bool{false, true} {
		data, err := EncodeBatch(batch, compress)
		require.NoError(t, err)
		assert.Equal(t, compress, IsCompressed(data))

		got, err := DecodeBatch(data)
		require.NoError(t, err)
		assert.Equal(t, batch.Date, got.Date)
		require.Len(t, got.Usage, 5)
		assert.Equal(t, "com.snapchat.Snapchat", got.Usage[0].AppIdentifier)
		assert.Equal(t, 7200.0, got.Usage[0].TimeSpentSeconds)

		day, err := got.Day()
		require.NoError(t, err)
		assert.Equal(t, testDay, day)
	}
}

func TestEncodeBatch_CompressionShrinksLargeBatches(t *testing.T) {
	var raw []types.RawUsage
	for i := 0; i < 200; i++ {
		raw = append(raw, FixedDay(testDay)...)
	}
	plain, err := EncodeBatch(NewBatch(testDay, raw), false)
	require.NoError(t, err)
	packed, err := EncodeBatch(NewBatch(testDay, raw), true)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain)/4)
}

func TestDecodeBatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code types.ErrorCode
	}{
		{"not json", []byte("nope"), types.ErrCodeValidationInvalidJSON},
		{"corrupt zstd", append([]byte{0x28, 0xb5, 0x2f, 0xfd}, []byte("garbage")...), types.ErrCodeValidationInvalidJSON},
		{"bad date", []byte(`{"date":"14/10/2026","usage":[]}`), types.ErrCodeValidationInvalidDate},
		{"missing date", []byte(`{"usage":[]}`), types.ErrCodeValidationInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBatch(tt.data)
			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestDecodeBatch_IgnoresPerItemDate(t *testing.T) {
	b, err := DecodeBatch([]byte(`{"date":"2026-10-14","usage":[{"app_identifier":"x","time_spent_seconds":5,"date":"whatever"}]}`))
	require.NoError(t, err)
	require.Len(t, b.Usage, 1)
	assert.True(t, b.Usage[0].Date.IsZero())
	assert.True(t, strings.HasPrefix(b.Usage[0].AppIdentifier, "x"))
}
