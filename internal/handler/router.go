package handler

import (
	"github.com/gin-gonic/gin"
)

// NewRouter はルーティングを設定したginエンジンを作成する
// jwtSecretが空の場合は認証なしで公開する
func NewRouter(h *TrailHandler, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", h.Health)

	api := r.Group("/")
	if jwtSecret != "" {
		api.Use(JWTMiddleware(jwtSecret))
	}

	trails := api.Group("/trails")
	{
		trails.POST("/process", h.PostProcessTrail)
		trails.GET("/snapshots/:id", h.GetSnapshot)
		trails.GET("/summary", h.GetSummary)
	}

	users := api.Group("/users")
	{
		users.GET("/:id/trail", h.GetUserTrail)
		users.GET("/:id/trail/export", h.ExportUserTrail)
	}

	return r
}
