package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gigamon-dev/SubspaceServer-sub008/metrics"
)

func TestDisabledCollectorRecordsNothing(t *testing.T) {
	c := metrics.NewDisabled()
	c.InterfaceRegistered("arena.ISomething")
	c.ModuleLoaded("chat.Module")
	assert.Empty(t, c.Snapshot())
}

func TestCollectorCountsAcrossBothInterfaces(t *testing.T) {
	c := metrics.New(time.Hour)
	defer c.Stop()

	c.InterfaceRegistered("arena.ISomething")
	c.InterfaceRegistered("arena.ISomething")
	c.CallbackFired("chat.MessageSent", 3, 1)
	c.ModuleLoaded("chat.Module")
	c.AttachChanged("chat.Module", "arena-1", true)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap["interface_registered.arena.ISomething"])
	assert.Equal(t, int64(1), snap["callback_fired.chat.MessageSent"])
	assert.Equal(t, int64(1), snap["callback_handler_failures.chat.MessageSent"])
	assert.Equal(t, int64(1), snap["module_loaded.chat.Module"])
	assert.Equal(t, int64(1), snap["module_attached.chat.Module"])
}
