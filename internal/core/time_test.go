package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorToWidth(t *testing.T) {
	assert.Equal(t, int64(1000), FloorToWidth(1500, 1000))
	assert.Equal(t, int64(1000), FloorToWidth(1000, 1000))
	assert.Equal(t, int64(0), FloorToWidth(999, 1000))
	assert.Equal(t, int64(1500), FloorToWidth(1500, 0))
	assert.Equal(t, int64(-2000), FloorToWidth(-1500, 1000))
}

func TestBuckets(t *testing.T) {
	assert.Equal(t, []int64{0, 1000, 2000}, Buckets(0, 2000, 1000))
	assert.Equal(t, []int64{0}, Buckets(0, 0, 1000))
	assert.Nil(t, Buckets(2000, 0, 1000))
	assert.Nil(t, Buckets(0, 2000, 0))
}
