package server

import (
	"github.com/gin-gonic/gin"

	"github.com/Aleph-Alpha/docsearch/internal/logger"
)

// NewRouter assembles the gin engine with the error mapping middleware and
// the three API routes.
func NewRouter(h *Handlers, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ErrorMapper(log))

	router.GET("/healthcheck", h.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/documents", h.SubmitDocuments)
		v1.POST("/internal/embedding-report/:token", h.EmbeddingReport)
		v1.GET("/search", h.Search)
	}

	return router
}
