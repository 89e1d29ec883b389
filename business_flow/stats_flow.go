package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
)

const (
	overviewCachePrefix = "stats:overview:"
	overviewCacheTTL    = 60 * time.Second
)

// StatsFlow defines read-only visit aggregations
type StatsFlow interface {
	LinkVisitCount(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.VisitCountResponse, error)
	LinkBrowserStats(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.BrowserStatsResponse, error)
	LinkRefererStats(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.RefererStatsResponse, error)
	EndpointStats(ctx context.Context, isAdmin bool) (*dto.EndpointStatsResponse, error)
	OverviewStats(ctx context.Context, isAdmin bool, req *dto.OverviewStatsRequest) (*dto.OverviewStatsResponse, error)
}

// StatsFlowImpl implements StatsFlow
type StatsFlowImpl struct {
	linkRepo    repository.LinkRepository
	linkHubRepo repository.LinkHubRepository
	visitRepo   repository.VisitRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
	topN        int
}

func NewStatsFlow(linkRepo repository.LinkRepository, linkHubRepo repository.LinkHubRepository, visitRepo repository.VisitRepository, userRepo repository.UserRepository, redisClient *redis.Client, topN int) StatsFlow {
	if topN <= 0 {
		topN = utils.DefaultStatsTopN
	}
	return &StatsFlowImpl{
		linkRepo:    linkRepo,
		linkHubRepo: linkHubRepo,
		visitRepo:   visitRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
		topN:        topN,
	}
}

func (f *StatsFlowImpl) LinkVisitCount(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.VisitCountResponse, error) {
	if err := f.requireLinkAccess(ctx, netid, isAdmin, linkID); err != nil {
		return nil, err
	}
	count, err := f.visitRepo.CountByLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	return &dto.VisitCountResponse{LinkID: linkID, Visits: count}, nil
}

func (f *StatsFlowImpl) LinkBrowserStats(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.BrowserStatsResponse, error) {
	if err := f.requireLinkAccess(ctx, netid, isAdmin, linkID); err != nil {
		return nil, err
	}
	raw, err := f.visitRepo.GroupByUserAgent(ctx, &linkID)
	if err != nil {
		return nil, err
	}

	browsers := map[string]int64{}
	platforms := map[string]int64{}
	for _, bucket := range raw {
		browser, platform := classifyUserAgent(bucket.Value)
		browsers[browser] += bucket.Count
		platforms[platform] += bucket.Count
	}

	return &dto.BrowserStatsResponse{
		Browsers:  topNWithTies(toBuckets(browsers), f.topN),
		Platforms: topNWithTies(toBuckets(platforms), f.topN),
	}, nil
}

func (f *StatsFlowImpl) LinkRefererStats(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.RefererStatsResponse, error) {
	if err := f.requireLinkAccess(ctx, netid, isAdmin, linkID); err != nil {
		return nil, err
	}
	raw, err := f.visitRepo.GroupByReferer(ctx, &linkID)
	if err != nil {
		return nil, err
	}

	referers := map[string]int64{}
	for _, bucket := range raw {
		referers[normalizeReferer(bucket.Value)] += bucket.Count
	}

	return &dto.RefererStatsResponse{Referers: topNWithTies(toBuckets(referers), f.topN)}, nil
}

// EndpointStats is the admin totals snapshot
func (f *StatsFlowImpl) EndpointStats(ctx context.Context, isAdmin bool) (*dto.EndpointStatsResponse, error) {
	if !isAdmin {
		return nil, ErrForbidden
	}

	deleted := false
	links, err := f.linkRepo.Count(ctx, models.LinkFilter{Deleted: &deleted})
	if err != nil {
		return nil, err
	}
	hubs, err := f.linkHubRepo.Count(ctx, models.LinkHubFilter{Deleted: &deleted})
	if err != nil {
		return nil, err
	}
	visits, err := f.visitRepo.Count(ctx, models.VisitFilter{})
	if err != nil {
		return nil, err
	}
	users, err := f.userRepo.Count(ctx, models.UserFilter{})
	if err != nil {
		return nil, err
	}

	return &dto.EndpointStatsResponse{Links: links, LinkHubs: hubs, Visits: visits, Users: users}, nil
}

// OverviewStats returns per-day visit totals with gap days filled in.
// Results are cached briefly in Redis since the admin dashboard polls.
func (f *StatsFlowImpl) OverviewStats(ctx context.Context, isAdmin bool, req *dto.OverviewStatsRequest) (*dto.OverviewStatsResponse, error) {
	if !isAdmin {
		return nil, ErrForbidden
	}
	from := utils.TimeToUTC(req.From).Truncate(24 * time.Hour)
	to := utils.TimeToUTC(req.To).Truncate(24 * time.Hour)
	if !from.Before(to) {
		return nil, ErrStartDateAfterEndDate
	}

	cacheKey := fmt.Sprintf("%s%d:%d", overviewCachePrefix, from.Unix(), to.Unix())
	if f.redisClient != nil {
		if cached, err := f.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var out dto.OverviewStatsResponse
			if json.Unmarshal([]byte(cached), &out) == nil {
				return &out, nil
			}
		}
	}

	counts, err := f.visitRepo.CountByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Day.UTC().Format("2006-01-02")] = c.Count
	}

	out := &dto.OverviewStatsResponse{Days: []dto.DayBucketDTO{}}
	for day := from; day.Before(to); day = day.Add(24 * time.Hour) {
		key := day.Format("2006-01-02")
		out.Days = append(out.Days, dto.DayBucketDTO{Day: key, Visits: byDay[key]})
	}

	if f.redisClient != nil {
		if payload, err := json.Marshal(out); err == nil {
			_ = f.redisClient.Set(ctx, cacheKey, payload, overviewCacheTTL).Err()
		}
	}
	return out, nil
}

// requireLinkAccess enforces the owner-or-admin rule for per-link stats
func (f *StatsFlowImpl) requireLinkAccess(ctx context.Context, netid string, isAdmin bool, linkID uint) error {
	link, err := f.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrLinkNotFound
	}
	if link.OwnerNetid != netid && !isAdmin {
		return ErrForbidden
	}
	return nil
}

// toBuckets converts a count map to a deterministic bucket slice: count
// descending, then name ascending
func toBuckets(counts map[string]int64) []dto.BucketDTO {
	out := make([]dto.BucketDTO, 0, len(counts))
	for name, count := range counts {
		out = append(out, dto.BucketDTO{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// topNWithTies keeps the first n buckets plus everything tied with the
// nth count. Input must already be sorted by count descending.
func topNWithTies(buckets []dto.BucketDTO, n int) []dto.BucketDTO {
	if n <= 0 || len(buckets) <= n {
		return buckets
	}
	threshold := buckets[n-1].Count
	cut := n
	for cut < len(buckets) && buckets[cut].Count == threshold {
		cut++
	}
	return buckets[:cut]
}

// classifyUserAgent derives a coarse browser and platform from a raw user
// agent. Order matters: Edge and Opera embed "Chrome", Chrome embeds
// "Safari".
func classifyUserAgent(ua string) (browser, platform string) {
	browser, platform = "Unknown", "Unknown"
	if ua == "" {
		return
	}
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "edg/") || strings.Contains(lower, "edge/"):
		browser = "Edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		browser = "Opera"
	case strings.Contains(lower, "firefox/"):
		browser = "Firefox"
	case strings.Contains(lower, "chrome/"):
		browser = "Chrome"
	case strings.Contains(lower, "safari/"):
		browser = "Safari"
	case strings.Contains(lower, "curl/"):
		browser = "curl"
	case strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") || strings.Contains(lower, "spider"):
		browser = "Bot"
	}

	switch {
	case strings.Contains(lower, "android"):
		platform = "Android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios"):
		platform = "iOS"
	case strings.Contains(lower, "windows"):
		platform = "Windows"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh"):
		platform = "macOS"
	case strings.Contains(lower, "linux"):
		platform = "Linux"
	}
	return
}

// refererAliases collapses short/mobile domains to their canonical site
var refererAliases = map[string]string{
	"t.co":        "twitter.com",
	"x.com":       "twitter.com",
	"fb.me":       "facebook.com",
	"youtu.be":    "youtube.com",
	"lnkd.in":     "linkedin.com",
	"redd.it":     "reddit.com",
	"instagr.am":  "instagram.com",
	"pin.it":      "pinterest.com",
	"goo.gl":      "google.com",
	"mail.google": "google.com",
}

// refererDisplayNames maps canonical domains to display names
var refererDisplayNames = map[string]string{
	"twitter.com":   "Twitter",
	"facebook.com":  "Facebook",
	"instagram.com": "Instagram",
	"linkedin.com":  "LinkedIn",
	"reddit.com":    "Reddit",
	"youtube.com":   "YouTube",
	"google.com":    "Google",
	"pinterest.com": "Pinterest",
	"tiktok.com":    "TikTok",
	"bing.com":      "Bing",
	"duckduckgo.com": "DuckDuckGo",
}

// normalizeReferer reduces a raw Referer header to a display name: strip
// the scheme and path, drop the www./m./amp./l. prefixes, collapse known
// aliases, then look up the display table. Absent or unparseable referers
// become "Unknown".
func normalizeReferer(raw string) string {
	if raw == "" {
		return "Unknown"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "Unknown"
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "Unknown"
	}

	for _, prefix := range []string{"www.", "m.", "amp.", "l."} {
		host = strings.TrimPrefix(host, prefix)
	}
	if alias, ok := refererAliases[host]; ok {
		host = alias
	}

	// Collapse subdomains of known sites (old.reddit.com, news.google.com)
	for domain := range refererDisplayNames {
		if strings.HasSuffix(host, "."+domain) {
			host = domain
			break
		}
	}

	if name, ok := refererDisplayNames[host]; ok {
		return name
	}
	return host
}
