// Package security sets the response headers every API reply carries.
package security

import (
	"net/http"
	"strconv"
	"time"
)

// Policy is the header set applied to responses. Empty values are skipped.
type Policy struct {
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	ResourcePolicy        string
	// CacheControl applies unless a handler sets its own.
	CacheControl string

	// HSTS is only sent over TLS. Zero disables it.
	HSTSMaxAge            time.Duration
	HSTSIncludeSubdomains bool
}

// APIPolicy suits a JSON API that never serves documents or scripts.
func APIPolicy() Policy {
	return Policy{
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "no-referrer",
		ResourcePolicy:        "same-origin",
		CacheControl:          "no-store",
		HSTSMaxAge:            365 * 24 * time.Hour,
		HSTSIncludeSubdomains: true,
	}
}

func (p Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.apply(w.Header(), r.TLS != nil)
		next.ServeHTTP(w, r)
	})
}

func (p Policy) apply(h http.Header, secure bool) {
	for _, kv := range [][2]string{
		{"Content-Security-Policy", p.ContentSecurityPolicy},
		{"X-Frame-Options", p.FrameOptions},
		{"X-Content-Type-Options", p.ContentTypeOptions},
		{"Referrer-Policy", p.ReferrerPolicy},
		{"Cross-Origin-Resource-Policy", p.ResourcePolicy},
		{"Cache-Control", p.CacheControl},
	} {
		if kv[1] != "" {
			h.Set(kv[0], kv[1])
		}
	}

	if secure && p.HSTSMaxAge > 0 {
		v := "max-age=" + strconv.FormatInt(int64(p.HSTSMaxAge/time.Second), 10)
		if p.HSTSIncludeSubdomains {
			v += "; includeSubDomains"
		}
		h.Set("Strict-Transport-Security", v)
	}
}
