// Package bypass classifies fetched responses that were blocked or
// challenged by anti-automation defenses. A positive detection means the
// source should be treated as throttled, not that the page was malformed.
package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Detector examines a response to determine whether a bot protection
// mechanism blocked or challenged the request.
type Detector func(statusCode int, headers http.Header, body []byte) (detected bool, source string)

// DefaultDetectors returns the standard list of bot protection detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCaptchaWall,
		detectLoginWall,
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
	}
}

// Detect runs the response through all provided detectors and returns the
// first positive classification.
func Detect(statusCode int, headers http.Header, body []byte, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(statusCode, headers, body); detected {
			return true, source
		}
	}
	return false, ""
}

// detectCaptchaWall catches interstitial CAPTCHA pages, including the
// Google "unusual traffic" page served to scrapers.
func detectCaptchaWall(statusCode int, _ http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusOK && statusCode != http.StatusTooManyRequests &&
		statusCode != http.StatusForbidden {
		return false, ""
	}
	signatures := [][]byte{
		[]byte("unusual traffic from your computer network"),
		[]byte("g-recaptcha"),
		[]byte("recaptcha/api"),
		[]byte("/sorry/index"),
		[]byte("hcaptcha.com"),
	}
	for _, sig := range signatures {
		if bytes.Contains(body, sig) {
			return true, "CAPTCHA"
		}
	}
	return false, ""
}

// detectLoginWall catches platform responses that send scrapers to an
// authentication page instead of the requested content.
func detectLoginWall(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode == http.StatusOK {
		if bytes.Contains(body, []byte("authwall")) ||
			bytes.Contains(body, []byte("Join LinkedIn today")) ||
			(bytes.Contains(body, []byte("loginForm")) && bytes.Contains(body, []byte("Log in to continue"))) {
			return true, "LoginWall"
		}
		return false, ""
	}
	if statusCode >= 300 && statusCode < 400 {
		loc := strings.ToLower(headers.Get("Location"))
		if strings.Contains(loc, "/login") || strings.Contains(loc, "/accounts/login") ||
			strings.Contains(loc, "/authwall") {
			return true, "LoginWall"
		}
	}
	return false, ""
}

func detectCloudflare(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode == http.StatusForbidden || statusCode == http.StatusServiceUnavailable {
		if strings.Contains(strings.ToLower(headers.Get("Server")), "cloudflare") {
			return true, "Cloudflare"
		}
		if bytes.Contains(body, []byte("cf-browser-verification")) ||
			bytes.Contains(body, []byte("cf-turnstile")) ||
			bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
			return true, "Cloudflare"
		}
	}
	return false, ""
}

func detectAkamai(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode == http.StatusForbidden {
		if strings.Contains(strings.ToLower(headers.Get("Server")), "akamai") {
			return true, "Akamai"
		}
		if bytes.Contains(body, []byte("Reference #")) && bytes.Contains(body, []byte("Access Denied")) {
			return true, "Akamai"
		}
	}
	return false, ""
}

func detectDataDome(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode == http.StatusForbidden {
		if strings.Contains(strings.ToLower(headers.Get("Server")), "datadome") {
			return true, "DataDome"
		}
		if headers.Get("X-DataDome") != "" || headers.Get("X-DataDome-Response") != "" {
			return true, "DataDome"
		}
		if bytes.Contains(body, []byte("geo.captcha-delivery.com")) || bytes.Contains(body, []byte("datadome")) {
			return true, "DataDome"
		}
	}
	return false, ""
}

func detectPerimeterX(statusCode int, headers http.Header, body []byte) (bool, string) {
	if statusCode == http.StatusForbidden {
		if headers.Get("X-Px-Captcha") != "" {
			return true, "PerimeterX"
		}
		if bytes.Contains(body, []byte("client.perimeterx.net")) ||
			bytes.Contains(body, []byte("px-captcha")) ||
			bytes.Contains(body, []byte("_pxBlock")) {
			return true, "PerimeterX"
		}
	}
	return false, ""
}
