package handler

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
	os.Exit(m.Run())
}
