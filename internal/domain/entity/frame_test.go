package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameWindow(t *testing.T) {
	w := FrameWindow{Start: 10, End: 20}
	assert.False(t, w.Empty())
	assert.Equal(t, 11, w.Len())
	assert.True(t, w.Contains(10))
	assert.True(t, w.Contains(20))
	assert.False(t, w.Contains(21))

	inverted := FrameWindow{Start: 5, End: 4}
	assert.True(t, inverted.Empty())
	assert.Equal(t, 0, inverted.Len())
	assert.False(t, inverted.Contains(5))
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		in   string
		want Rotation
	}{
		{"", RotateNone},
		{"none", RotateNone},
		{"LEFT", RotateLeft},
		{" right ", RotateRight},
	}
	for _, tt := range tests {
		got, err := ParseRotation(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRotation("up")
	require.Error(t, err)
}

func TestRotationGeometry(t *testing.T) {
	w, h := RotateNone.Geometry(640, 480)
	assert.Equal(t, [2]int{640, 480}, [2]int{w, h})

	for _, r := range []Rotation{RotateLeft, RotateRight} {
		w, h := r.Geometry(640, 480)
		assert.Equal(t, [2]int{480, 640}, [2]int{w, h}, string(r))
	}

	assert.True(t, RotateLeft.Clockwise())
	assert.False(t, RotateRight.Clockwise())
}

func TestFrameValidate(t *testing.T) {
	f := NewFrame(3, 4, 2)
	require.NoError(t, f.Validate())
	assert.Equal(t, 12, f.Stride())

	f.Pix = f.Pix[:5]
	require.Error(t, f.Validate())
}
