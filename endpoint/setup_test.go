package endpoint_test

import (
	"os"
	"testing"

	"github.com/ariebrainware/clinic-therapy/config"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
)

// TestMain fixes the environment once so the config singleton is consistent
// regardless of test order.
func TestMain(m *testing.M) {
	os.Setenv("APPENV", "test")
	os.Setenv("JWTSECRET", "test-secret-123")
	os.Setenv("GINMODE", "release")

	util.SetJWTSecret("test-secret-123")

	cfg := config.LoadConfig()
	gin.SetMode(cfg.GinMode)

	os.Exit(m.Run())
}
