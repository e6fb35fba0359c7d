package http

import (
	"net/http"
	"strconv"

	x402 "github.com/coinbase/x402-discovery"
	"github.com/coinbase/x402-discovery/discovery"
)

// Discovery headers mirrored from the translated document for clients that
// prefer header-based discovery over parsing the body
const (
	HeaderPrice       = "X-Price"
	HeaderNetwork     = "X-Network"
	HeaderPayTo       = "X-Pay-To"
	HeaderAsset       = "X-Asset"
	HeaderVersion     = "X-402-Version"
	HeaderFacilitator = "X-Facilitator"
)

// setDiscoveryHeaders writes the mirrored headers for a translated result.
// X-Facilitator is only set when the legacy payload named a facilitator.
func setDiscoveryHeaders(h http.Header, result discovery.Result, contentLength int) {
	h.Del("Content-Encoding")
	h.Set("Content-Type", x402.MimeTypeJSON)
	h.Set("Content-Length", strconv.Itoa(contentLength))

	offer := result.Document.Accepts[0]
	h.Set(HeaderPrice, result.Legacy.Price)
	h.Set(HeaderNetwork, offer.Network)
	h.Set(HeaderPayTo, offer.PayTo)
	h.Set(HeaderAsset, offer.Asset)
	h.Set(HeaderVersion, strconv.Itoa(result.Document.X402Version))

	if result.Legacy.FacilitatorURL != "" {
		h.Set(HeaderFacilitator, result.Legacy.FacilitatorURL)
	} else {
		h.Del(HeaderFacilitator)
	}
}

// resetHeader makes h an exact copy of snapshot
func resetHeader(h http.Header, snapshot http.Header) {
	for k := range h {
		delete(h, k)
	}
	for k, v := range snapshot {
		h[k] = v
	}
}

// BuildResourceURL reconstructs the absolute URL of the request
func BuildResourceURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
