package mqttbustest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	assert.True(t, Match("sensor/soil/#", "sensor/soil/f1/s1"))
	assert.True(t, Match("sensor/+/f1/+", "sensor/soil/f1/s1"))
	assert.True(t, Match("a/b", "a/b"))
	assert.False(t, Match("a/b", "a/b/c"))
	assert.False(t, Match("a/+/c", "a/b"))
	assert.False(t, Match("sensor/soil/#", "event/evaluation/f1"))
}
