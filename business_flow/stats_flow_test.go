package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plexlink/plexlink/app/dto"
)

func TestClassifyUserAgent(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		browser  string
		platform string
	}{
		{
			name:     "chrome on windows",
			ua:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			browser:  "Chrome",
			platform: "Windows",
		},
		{
			name:     "edge is not chrome",
			ua:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			browser:  "Edge",
			platform: "Windows",
		},
		{
			name:     "opera is not chrome",
			ua:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 OPR/106.0.0.0",
			browser:  "Opera",
			platform: "Linux",
		},
		{
			name:     "safari on iphone",
			ua:       "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			browser:  "Safari",
			platform: "iOS",
		},
		{
			name:     "firefox on mac",
			ua:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
			browser:  "Firefox",
			platform: "macOS",
		},
		{
			name:     "curl",
			ua:       "curl/8.4.0",
			browser:  "curl",
			platform: "Unknown",
		},
		{
			name:     "crawler",
			ua:       "Googlebot/2.1 (+http://www.google.com/bot.html)",
			browser:  "Bot",
			platform: "Unknown",
		},
		{
			name:     "empty",
			ua:       "",
			browser:  "Unknown",
			platform: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser, platform := classifyUserAgent(tt.ua)
			assert.Equal(t, tt.browser, browser)
			assert.Equal(t, tt.platform, platform)
		})
	}
}

func TestNormalizeReferer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "Unknown"},
		{"no host", "not a url", "Unknown"},
		{"plain domain", "https://example.org/page", "example.org"},
		{"www stripped", "https://www.example.org/", "example.org"},
		{"mobile prefix stripped", "https://m.facebook.com/story", "Facebook"},
		{"twitter shortener", "https://t.co/abc123", "Twitter"},
		{"x rebrand", "https://x.com/user/status/1", "Twitter"},
		{"youtube short", "https://youtu.be/dQw4w9WgXcQ", "YouTube"},
		{"subdomain collapse", "https://old.reddit.com/r/golang", "Reddit"},
		{"google news subdomain", "https://news.google.com/articles", "Google"},
		{"display name lookup", "https://duckduckgo.com/?q=test", "DuckDuckGo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeReferer(tt.raw))
		})
	}
}

func TestToBuckets_SortsByCountThenName(t *testing.T) {
	counts := map[string]int64{
		"Chrome":  5,
		"Firefox": 10,
		"Safari":  5,
	}
	buckets := toBuckets(counts)

	assert.Equal(t, []dto.BucketDTO{
		{Name: "Firefox", Count: 10},
		{Name: "Chrome", Count: 5},
		{Name: "Safari", Count: 5},
	}, buckets)
}

func TestTopNWithTies(t *testing.T) {
	buckets := []dto.BucketDTO{
		{Name: "a", Count: 10},
		{Name: "b", Count: 8},
		{Name: "c", Count: 5},
		{Name: "d", Count: 5},
		{Name: "e", Count: 5},
		{Name: "f", Count: 1},
	}

	t.Run("ties at the cutoff are kept", func(t *testing.T) {
		got := topNWithTies(buckets, 3)
		assert.Len(t, got, 5)
		assert.Equal(t, "e", got[4].Name)
	})

	t.Run("short input is returned whole", func(t *testing.T) {
		got := topNWithTies(buckets, 10)
		assert.Len(t, got, 6)
	})

	t.Run("clean cut without ties", func(t *testing.T) {
		got := topNWithTies(buckets, 2)
		assert.Equal(t, []dto.BucketDTO{{Name: "a", Count: 10}, {Name: "b", Count: 8}}, got)
	})

	t.Run("non-positive n returns everything", func(t *testing.T) {
		assert.Len(t, topNWithTies(buckets, 0), 6)
	})
}
