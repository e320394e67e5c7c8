package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "sec.gov,.example.com")

	tests := []struct {
		url  string
		want string
	}{
		{"http://filings.acme.com/10k.htm", "http://proxy.internal:3128"},
		{"https://filings.acme.com/10k.htm", "http://proxy.internal:3128"},
		{"https://sec.gov/Archives/x.htm", ""},
		{"https://www.example.com/report", ""},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s) failed: %v", tt.url, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("proxy(%s) = %q, want %q", tt.url, gotStr, tt.want)
		}
	}
}

func TestNewProxyFunc_SeparateHTTPS(t *testing.T) {
	proxy := NewProxyFunc("http://plain:80", "http://secure:443", "")

	req, _ := http.NewRequest(http.MethodGet, "https://filings.acme.com/", nil)
	got, err := proxy(req)
	if err != nil || got == nil || got.Host != "secure:443" {
		t.Errorf("Expected https proxy, got %v (err %v)", got, err)
	}
}

func TestRobotsChecker(t *testing.T) {
	var robotsHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits++
			_, _ = fmt.Fprint(w, "User-agent: distress\nDisallow: /private/\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("distress", 5*time.Second)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/private/report.htm")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if allowed {
		t.Error("Expected /private/ to be disallowed")
	}
	if delay != 2*time.Second {
		t.Errorf("Expected crawl delay 2s, got %v", delay)
	}

	if !checker.IsAllowed(ctx, server.URL+"/public/report.htm") {
		t.Error("Expected /public/ to be allowed")
	}
	if robotsHits != 1 {
		t.Errorf("Expected robots.txt to be fetched once, got %d", robotsHits)
	}

	checker.Clear()
	_ = checker.IsAllowed(ctx, server.URL+"/public/report.htm")
	if robotsHits != 2 {
		t.Errorf("Expected refetch after Clear, got %d", robotsHits)
	}
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("distress", 5*time.Second)
	if !checker.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("Expected missing robots.txt to allow everything")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	if got := NormalizeUserAgent("distress/0.1 (+https://github.com/ppiankov/distress)"); got != "distress" {
		t.Errorf("NormalizeUserAgent() = %q, want distress", got)
	}
	if got := NormalizeUserAgent(""); got != "" {
		t.Errorf("NormalizeUserAgent(\"\") = %q, want empty", got)
	}
}
