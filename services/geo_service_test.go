package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoDistanceZeroForSamePoint(t *testing.T) {
	geo := NewGeoService()

	d, err := geo.Distance(19.0760, 72.8750, 19.0760, 72.8750)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestGeoDistanceSymmetry(t *testing.T) {
	geo := NewGeoService()

	// 孟买 → 浦那
	d1, err := geo.Distance(19.0760, 72.8777, 18.5204, 73.8567)
	require.NoError(t, err)
	d2, err := geo.Distance(18.5204, 73.8567, 19.0760, 72.8777)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	// 两市直线距离约120公里
	assert.InDelta(t, 120, d1, 10)
}

func TestGeoDistanceKnownValue(t *testing.T) {
	geo := NewGeoService()

	// 孟买 → 那格浦尔，约680公里
	d, err := geo.Distance(19.0760, 72.8777, 21.1458, 79.0882)
	require.NoError(t, err)
	assert.InDelta(t, 680, d, 20)
}

func TestGeoValidateCoordinates(t *testing.T) {
	geo := NewGeoService()

	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 19.0, 72.9, false},
		{"boundary north pole", 90, 0, false},
		{"boundary date line", 0, -180, false},
		{"latitude too high", 90.1, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"longitude too low", 0, -181, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := geo.ValidateCoordinates(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGeoDistanceRejectsInvalidCoordinates(t *testing.T) {
	geo := NewGeoService()

	_, err := geo.Distance(200, 72.9, 19.0, 72.9)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = geo.Distance(19.0, 72.9, 19.0, 999)
	assert.ErrorIs(t, err, ErrValidation)
}
