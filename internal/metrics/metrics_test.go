package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativepg/pgclient/internal/metrics"
)

func TestCollectorRecordsAcrossAllMethods(t *testing.T) {
	c := metrics.New()

	c.ConnectAttempted("ok")
	c.AuthCompleted("scram-sha-256", "ok")
	c.RowsDecoded(3)
	c.QueryDuration(5 * time.Millisecond)
	c.ProtocolError("incompatible_response_type")

	families, err := c.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilCollectorIsANoop(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.ConnectAttempted("ok")
		c.AuthCompleted("md5", "ok")
		c.RowsDecoded(1)
		c.QueryDuration(time.Millisecond)
		c.ProtocolError("x")
	})
}
