package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResponseMetaCollectsValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	WithResponseMeta()(c)
	SetCacheHit(c, true)
	SetMeta(c, "source", "graphql")
	started := time.Now().Add(-5 * time.Millisecond)
	meta := ResponseMeta(c, started)

	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "graphql", meta["source"])
	assert.GreaterOrEqual(t, meta["processing_time_ms"].(int64), int64(5))
}

func TestResponseMetaWithoutInitialisation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	SetCacheHit(c, false)
	meta := ResponseMeta(c, time.Now())

	assert.Equal(t, false, meta["cache_hit"])
	assert.Nil(t, ensureMeta(nil)["cache_hit"])
}
