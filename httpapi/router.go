// Package httpapi exposes a read-only gin admin surface over the module
// manager: module listings, per-module detail, per-arena module lists,
// and a metrics snapshot.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gigamon-dev/SubspaceServer-sub008/metrics"
	"github.com/gigamon-dev/SubspaceServer-sub008/module"
)

// moduleInfoProvider is the narrow slice of *module.Manager the router
// needs, so tests can supply a fake without constructing a real manager.
type moduleInfoProvider interface {
	ListModules() []module.Info
	GetModuleInfo(identity string) (module.Info, bool)
}

// NewRouter builds the admin gin engine. snapshotter may be nil if metrics
// are disabled, in which case GET /metrics reports an empty snapshot.
func NewRouter(mgr moduleInfoProvider, snapshotter *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/modules", func(c *gin.Context) {
		c.JSON(http.StatusOK, mgr.ListModules())
	})

	r.GET("/modules/:name", func(c *gin.Context) {
		info, ok := mgr.GetModuleInfo(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
			return
		}
		c.JSON(http.StatusOK, info)
	})

	r.GET("/arenas/:id/modules", func(c *gin.Context) {
		arenaID := c.Param("id")
		var out []module.Info
		for _, info := range mgr.ListModules() {
			for _, a := range info.AttachedArenas {
				if a == arenaID {
					out = append(out, info)
					break
				}
			}
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/metrics", func(c *gin.Context) {
		if snapshotter == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, snapshotter.Snapshot())
	})

	return r
}
