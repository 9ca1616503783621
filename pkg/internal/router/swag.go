package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yeisme/filevault/docs"
	"github.com/yeisme/filevault/pkg/configs"
)

// RegisterSwaggerRoute 在调试模式下提供 /swagger/index.html.
// 文档中的 Host 指向当前监听地址，版本号取构建版本.
func RegisterSwaggerRoute(r *gin.Engine, cfg configs.ServerConfig) {
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	docs.SwaggerInfo.Version = configs.AppVersion
	docs.SwaggerInfo.Schemes = []string{"http"}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))
}
