package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "value")
	t.Setenv("CFG_TEST_INT", "12")
	t.Setenv("CFG_TEST_BAD_INT", "twelve")
	t.Setenv("CFG_TEST_BOOL", "false")
	t.Setenv("CFG_TEST_DUR", "90s")
	t.Setenv("CFG_TEST_NEG_DUR", "-1s")

	assert.Equal(t, "value", EnvDefault("CFG_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("CFG_TEST_UNSET", "def"))
	assert.Equal(t, 12, EnvIntDefault("CFG_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("CFG_TEST_BAD_INT", 1))
	assert.False(t, EnvBoolDefault("CFG_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("CFG_TEST_UNSET", true))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("CFG_TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, EnvDurationDefault("CFG_TEST_NEG_DUR", time.Minute))
}

func TestRequired(t *testing.T) {
	t.Parallel()

	var r Required
	r.NonEmpty("set", "A")
	assert.NoError(t, r.Err())

	r.NonEmpty("", "B")
	r.NonEmptyBytes(nil, "C")
	assert.EqualError(t, r.Err(), "missing required env: B, C")
}
