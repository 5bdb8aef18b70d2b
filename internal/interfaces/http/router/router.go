package router

import "github.com/gin-gonic/gin"

// Registrar is implemented by handlers that expose HTTP routes
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Mount attaches every handler's routes under the versioned API prefix,
// e.g. Mount(engine, "v1", ...) serves under /api/v1
func Mount(engine *gin.Engine, version string, handlers ...Registrar) {
	api := engine.Group("/api/" + version)
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
}
