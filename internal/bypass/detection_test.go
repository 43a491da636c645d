package bypass

import (
	"net/http"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		headers    http.Header
		body       string
		wantHit    bool
		wantSource string
	}{
		{
			name:       "clean page",
			statusCode: http.StatusOK,
			body:       "<html><body>Acme Dental welcomes you</body></html>",
		},
		{
			name:       "google unusual traffic page",
			statusCode: http.StatusOK,
			body:       "Our systems have detected unusual traffic from your computer network.",
			wantHit:    true,
			wantSource: "CAPTCHA",
		},
		{
			name:       "recaptcha widget on 429",
			statusCode: http.StatusTooManyRequests,
			body:       `<div class="g-recaptcha" data-sitekey="x"></div>`,
			wantHit:    true,
			wantSource: "CAPTCHA",
		},
		{
			name:       "linkedin authwall body",
			statusCode: http.StatusOK,
			body:       `<script>window.location="/authwall?trk=x"</script>`,
			wantHit:    true,
			wantSource: "LoginWall",
		},
		{
			name:       "redirect to login page",
			statusCode: http.StatusFound,
			headers:    http.Header{"Location": {"https://www.instagram.com/accounts/login/?next=/acme"}},
			wantHit:    true,
			wantSource: "LoginWall",
		},
		{
			name:       "redirect elsewhere is fine",
			statusCode: http.StatusMovedPermanently,
			headers:    http.Header{"Location": {"https://acme.com/new-home"}},
		},
		{
			name:       "cloudflare challenge",
			statusCode: http.StatusServiceUnavailable,
			headers:    http.Header{"Server": {"cloudflare"}},
			wantHit:    true,
			wantSource: "Cloudflare",
		},
		{
			name:       "cloudflare turnstile body without header",
			statusCode: http.StatusForbidden,
			body:       `<div class="cf-turnstile"></div>`,
			wantHit:    true,
			wantSource: "Cloudflare",
		},
		{
			name:       "akamai access denied",
			statusCode: http.StatusForbidden,
			body:       "Access Denied\nReference #18.1234deadbeef",
			wantHit:    true,
			wantSource: "Akamai",
		},
		{
			name:       "datadome header",
			statusCode: http.StatusForbidden,
			headers:    http.Header{"X-Datadome": {"protected"}},
			wantHit:    true,
			wantSource: "DataDome",
		},
		{
			name:       "perimeterx captcha block",
			statusCode: http.StatusForbidden,
			body:       `<script src="https://client.perimeterx.net/px.js"></script>`,
			wantHit:    true,
			wantSource: "PerimeterX",
		},
		{
			name:       "plain 403 without vendor markers",
			statusCode: http.StatusForbidden,
			body:       "Forbidden",
		},
		{
			name:       "server error is not a block",
			statusCode: http.StatusInternalServerError,
			body:       "g-recaptcha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := tt.headers
			if headers == nil {
				headers = http.Header{}
			}
			hit, source := Detect(tt.statusCode, headers, []byte(tt.body), DefaultDetectors())
			if hit != tt.wantHit {
				t.Errorf("Detect() hit = %v, want %v", hit, tt.wantHit)
			}
			if source != tt.wantSource {
				t.Errorf("Detect() source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestDetectFirstMatchWins(t *testing.T) {
	custom := []Detector{
		func(int, http.Header, []byte) (bool, string) { return false, "" },
		func(int, http.Header, []byte) (bool, string) { return true, "First" },
		func(int, http.Header, []byte) (bool, string) { return true, "Second" },
	}
	hit, source := Detect(http.StatusOK, http.Header{}, nil, custom)
	if !hit || source != "First" {
		t.Errorf("Detect() = %v, %q, want first positive detector", hit, source)
	}
}
