package observability

import (
	"testing"

	"github.com/evilmidget38/KittehIRCBot/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordLineSent("kitteh", "high")
	RecordLineSent("kitteh", "low")
	RecordWriteFailure("kitteh")
	RecordQueueDepth("kitteh", 3, 7)
	RecordQuitWrite("kitteh")
}
