package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAtLimit(t *testing.T) {
	b := NewBreaker(3)

	assert.False(t, b.Fail())
	assert.False(t, b.Fail())
	assert.True(t, b.Fail())
	assert.True(t, b.Tripped())
	assert.Equal(t, 3, b.Failures())
}

func TestBreakerSuccessResets(t *testing.T) {
	b := NewBreaker(3)

	b.Fail()
	b.Fail()
	b.Success()

	assert.False(t, b.Fail())
	assert.False(t, b.Tripped())
}

func TestBreakerNonPositiveLimit(t *testing.T) {
	b := NewBreaker(0)
	assert.True(t, b.Fail())
}
