package testlog

import (
	"testing"

	"github.com/evilmidget38/KittehIRCBot/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logging.Debugf("test=%s", t.Name())
}
