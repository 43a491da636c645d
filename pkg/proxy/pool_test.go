package proxy

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNextRotates(t *testing.T) {
	p := NewPool(Config{})
	if err := p.Add("http://proxy-a:8080", "http://proxy-b:8080"); err != nil {
		t.Fatal(err)
	}

	first := p.Next()
	second := p.Next()
	third := p.Next()
	if first == nil || second == nil || third == nil {
		t.Fatal("Next returned nil from populated pool")
	}
	if first.Host == second.Host {
		t.Errorf("consecutive proxies should differ: %s then %s", first, second)
	}
	if third.Host != first.Host {
		t.Errorf("rotation should wrap: got %s, want %s", third, first)
	}
}

func TestNextEmptyPool(t *testing.T) {
	p := NewPool(Config{})
	if got := p.Next(); got != nil {
		t.Errorf("empty pool should return nil, got %s", got)
	}
}

func TestAddDefaultsScheme(t *testing.T) {
	p := NewPool(Config{})
	if err := p.Add("proxy-a:8080"); err != nil {
		t.Fatal(err)
	}
	u := p.Next()
	if u == nil || u.Scheme != "http" {
		t.Errorf("schemeless entry should default to http, got %v", u)
	}
}

func TestMarkFailureDisablesAfterMax(t *testing.T) {
	p := NewPool(Config{MaxFailures: 2, Cooldown: time.Hour})
	if err := p.Add("http://proxy-a:8080"); err != nil {
		t.Fatal(err)
	}

	u := p.Next()
	_ = p.MarkFailure(u)
	if p.Next() == nil {
		t.Fatalf("one failure below the max should not disable the proxy")
	}
	_ = p.MarkFailure(u)
	if got := p.Next(); got != nil {
		t.Errorf("proxy should be cooling down, got %s", got)
	}
}

func TestMarkFailureReenablesAfterCooldown(t *testing.T) {
	p := NewPool(Config{MaxFailures: 1, Cooldown: 10 * time.Millisecond})
	if err := p.Add("http://proxy-a:8080"); err != nil {
		t.Fatal(err)
	}

	u := p.Next()
	_ = p.MarkFailure(u)
	if p.Next() != nil {
		t.Fatalf("proxy should be disabled immediately after failure")
	}

	time.Sleep(20 * time.Millisecond)
	if p.Next() == nil {
		t.Errorf("proxy should be healthy again after cooldown")
	}
}

func TestMarkSuccessDecaysFailures(t *testing.T) {
	p := NewPool(Config{MaxFailures: 2, Cooldown: time.Hour})
	if err := p.Add("http://proxy-a:8080"); err != nil {
		t.Fatal(err)
	}

	u := p.Next()
	_ = p.MarkFailure(u)
	if err := p.MarkSuccess(u); err != nil {
		t.Fatal(err)
	}
	_ = p.MarkFailure(u)
	if p.Next() == nil {
		t.Errorf("success should have decayed the failure count")
	}
}

func TestMarkUnknownProxy(t *testing.T) {
	p := NewPool(Config{})
	stranger, err := url.Parse("http://other:9999")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.MarkSuccess(stranger); err == nil {
		t.Errorf("marking a proxy not in the pool must error")
	}
	if err := p.MarkFailure(nil); err == nil {
		t.Errorf("nil proxy must error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.txt")
	content := "# fleet A\nhttp://proxy-a:8080\n\nproxy-b:8080\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPool(Config{})
	if err := p.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	first := p.Next()
	second := p.Next()
	if first == nil || second == nil {
		t.Fatalf("expected 2 proxies loaded")
	}
	if first.Host != "proxy-a:8080" || second.Host != "proxy-b:8080" {
		t.Errorf("loaded %s, %s", first, second)
	}
}

func TestLoadFileMissing(t *testing.T) {
	p := NewPool(Config{})
	if err := p.LoadFile("/nonexistent/proxies.txt"); err == nil {
		t.Errorf("missing file must error")
	}
}
