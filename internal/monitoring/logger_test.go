package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var captured []string
	SetLogger(func(format string, v ...interface{}) {
		captured = append(captured, fmt.Sprintf(format, v...))
	})

	Logf("built %d rows", 42)
	assert.Equal(t, []string{"built 42 rows"}, captured)

	// nil installs a no-op logger rather than panicking
	SetLogger(nil)
	Logf("dropped %d rows", 3)
	assert.Len(t, captured, 1)
}

func TestDebugfRespectsVerbose(t *testing.T) {
	defer SetLogger(nil)
	defer SetVerbose(false)

	var captured []string
	SetLogger(func(format string, v ...interface{}) {
		captured = append(captured, fmt.Sprintf(format, v...))
	})

	SetVerbose(false)
	Debugf("crop %d", 1)
	assert.Empty(t, captured)

	SetVerbose(true)
	Debugf("crop %d", 2)
	assert.Equal(t, []string{"crop 2"}, captured)
}
