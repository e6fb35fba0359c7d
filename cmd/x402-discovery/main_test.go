package main

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coinbase/x402-discovery/internal/config"
	"github.com/coinbase/x402-discovery/types"
)

func newTestGateway(t *testing.T, upstream http.Handler, cfg *config.Config) *httptest.Server {
	t.Helper()

	backend := httptest.NewServer(upstream)
	t.Cleanup(backend.Close)

	target, err := url.Parse(backend.URL)
	require.NoError(t, err)

	gateway := httptest.NewServer(newGateway(target, cfg, zap.NewNop(), true))
	t.Cleanup(gateway.Close)
	return gateway
}

func TestGateway_TranslatesUpstreamPaymentRequired(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"price":"0.10","network":"base","payTo":"0xABC"},"input":{"text":"string"}}`))
	})
	gateway := newTestGateway(t, upstream, &config.Config{FacilitatorURL: "https://fac.example.com"})

	resp, err := http.Post(gateway.URL+"/entrypoints/echo/invoke", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "eip155:8453", resp.Header.Get("X-Network"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc, err := types.ToPaymentRequired(body)
	require.NoError(t, err)
	require.Len(t, doc.Accepts, 1)
	assert.Equal(t, "100000", doc.Accepts[0].Amount)
	assert.Equal(t, "https://fac.example.com", doc.Accepts[0].FacilitatorURL())
	assert.Equal(t, gateway.URL+"/entrypoints/echo/invoke", doc.Resource.URL)
	assert.Equal(t, "Paid entrypoint: echo", doc.Resource.Description)
}

func TestGateway_TranslatesCompressingUpstream(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := []byte(`{"error":{"price":"0.10","network":"base","payTo":"0xABC"}}`)
		w.Header().Set("Content-Type", "application/json")
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write(body)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusPaymentRequired)
		gz := gzip.NewWriter(w)
		_, _ = gz.Write(body)
		_ = gz.Close()
	})
	gateway := newTestGateway(t, upstream, &config.Config{})

	// The default client advertises gzip
	resp, err := http.Post(gateway.URL+"/entrypoints/echo/invoke", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-402-Version"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc, err := types.ToPaymentRequired(body)
	require.NoError(t, err)
	require.Len(t, doc.Accepts, 1)
	assert.Equal(t, "100000", doc.Accepts[0].Amount)
}

func TestGateway_PassesThroughCompressedSuccess(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			_, _ = w.Write([]byte("paid content"))
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("paid content"))
		_ = gz.Close()
	})
	gateway := newTestGateway(t, upstream, &config.Config{})

	resp, err := http.Get(gateway.URL + "/content")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid content", string(body))
}

func TestGateway_PassesThroughOtherResponses(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "yes")
		_, _ = w.Write([]byte("paid content"))
	})
	gateway := newTestGateway(t, upstream, &config.Config{})

	resp, err := http.Get(gateway.URL + "/entrypoints/echo/invoke")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Upstream"))
	assert.Equal(t, "paid content", string(body))
}

func TestGateway_Healthz(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("health checks must not reach the upstream")
	})
	gateway := newTestGateway(t, upstream, &config.Config{})

	resp, err := http.Get(gateway.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateway_UpstreamDown(t *testing.T) {
	target, err := url.Parse("http://127.0.0.1:1")
	require.NoError(t, err)

	gateway := httptest.NewServer(newGateway(target, &config.Config{}, zap.NewNop(), false))
	defer gateway.Close()

	resp, err := http.Get(gateway.URL + "/anything")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
