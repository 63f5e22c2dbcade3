package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevelKnownNames(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, OffLevel, ParseLevel("off"))
}

func TestParseLevelUnknownNameDefaults(t *testing.T) {
	assert.Equal(t, DefaultLevel, ParseLevel("bogus"))
}

func TestSetLevelAndGetLevelRoundTrip(t *testing.T) {
	defer SetLevel(DefaultLevel)
	SetLevel(WarnLevel)
	assert.Equal(t, WarnLevel, GetLevel())
}

func TestAssertHelpersReportCorrectly(t *testing.T) {
	assert.True(t, AssertEqual(1, 1))
	assert.True(t, AssertTrue(true))
	assert.True(t, AssertFalse(false))
	assert.True(t, AssertNotNil(1))
}
