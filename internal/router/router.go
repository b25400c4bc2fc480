package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/quotevault/backend/config"
	"github.com/quotevault/backend/internal/handler"
)

func Setup(
	cfg *config.Config,
	quoteHandler *handler.QuoteHandler,
	categoryHandler *handler.CategoryHandler,
	transferHandler *handler.TransferHandler,
	consoleHandler *handler.ConsoleHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	// 快照导出等大响应走 gzip
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	api := r.Group("/api")
	{
		quotes := api.Group("/quotes")
		{
			quotes.GET("", quoteHandler.List)
			quotes.POST("", quoteHandler.Create)
			quotes.POST("/decay-sweep", quoteHandler.DecaySweep)
			quotes.PUT("/:id", quoteHandler.Update)
			quotes.DELETE("/:id", quoteHandler.Delete)
			quotes.POST("/:id/boost", quoteHandler.Boost)
			quotes.GET("/:id/html", quoteHandler.RenderHTML)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		snapshot := api.Group("/snapshot")
		{
			snapshot.GET("/export", transferHandler.Export)
			snapshot.POST("/import", transferHandler.Import)
		}

		// 原始 SQL 控制台，仅远程后端生效
		api.POST("/console/sql", consoleHandler.Execute)
	}

	return r
}
