package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	router.POST("/search", HandleSearch)
	router.POST("/search/batch", HandleSearchBatch)
	router.POST("/documents", HandleInsert)
	router.POST("/documents/batch", HandleInsertBatch)
	router.PUT("/documents", HandleUpsert)
	router.GET("/documents/:id", HandleGet)
	router.DELETE("/documents/:id", HandleDelete)
	router.POST("/documents/delete_batch", HandleDeleteBatch)
	router.PATCH("/documents/:id/metadata", HandleUpdateMetadata)
	router.PATCH("/documents/:id/vector", HandleUpdateVector)
	router.GET("/count", HandleCount)
	router.POST("/checkpoint", HandleCheckpoint)
}
