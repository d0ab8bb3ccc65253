package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

// Logger Zap请求日志中间件；处理过程中挂到Context上的错误
// 会一并记录
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			utils.Logger.Error("request", fields...)
			return
		}

		utils.Logger.Info("request", fields...)
	}
}
