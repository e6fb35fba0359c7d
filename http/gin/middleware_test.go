package gin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	x402http "github.com/coinbase/x402-discovery/http"
	"github.com/coinbase/x402-discovery/types"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(DiscoveryMiddleware(x402http.WithLogger(zap.NewNop())))

	router.POST("/entrypoints/:key/invoke", func(c *gin.Context) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": gin.H{
				"price":   "0.25",
				"network": "base-sepolia",
				"payTo":   "0xABC",
			},
			"input": gin.H{"prompt": "string"},
		})
	})
	router.GET("/abort", func(c *gin.Context) {
		c.AbortWithStatus(http.StatusPaymentRequired)
	})
	router.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})
	router.GET("/status-only", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	router.GET("/hijack", func(c *gin.Context) {
		c.Status(http.StatusPaymentRequired)
		c.Writer.WriteHeaderNow()
		if _, _, err := c.Writer.Hijack(); err != nil {
			_, _ = c.Writer.WriteString(err.Error())
		}
	})
	return router
}

func TestDiscoveryMiddleware_TranslatesGinJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://agent.example.com/entrypoints/summarize/invoke", nil)
	newRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "eip155:84532", rec.Header().Get(x402http.HeaderNetwork))

	doc, err := types.ToPaymentRequired(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Accepts, 1)
	assert.Equal(t, "250000", doc.Accepts[0].Amount)
	assert.Equal(t, "Paid entrypoint: summarize", doc.Resource.Description)
	assert.Contains(t, doc.Extensions, "bazaar")
}

func TestDiscoveryMiddleware_AbortWithoutBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abort", nil))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get(x402http.HeaderVersion))
}

func TestDiscoveryMiddleware_PassThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status-only", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestDiscoveryMiddleware_HijackGoesThroughInterceptor(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hijack", nil))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "buffered")
}
