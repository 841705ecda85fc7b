package fetcher

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
)

// RobotsFetchTimeout предел загрузки robots.txt, если у запроса нет своего таймаута
const RobotsFetchTimeout = 15 * time.Second

type RobotsCache struct {
	cache  map[string]*RobotsTxt
	ttl    time.Duration
	mu     sync.RWMutex
	client *resty.Client
}

// RobotsTxt data == nil означает «ограничений нет»
type RobotsTxt struct {
	data      *robotstxt.RobotsData
	expiresAt time.Time
}

func NewRobotsCache(ttl time.Duration, client *resty.Client) *RobotsCache {
	return &RobotsCache{
		cache:  make(map[string]*RobotsTxt),
		ttl:    ttl,
		client: client,
	}
}

func (rc *RobotsCache) IsAllowed(ctx context.Context, target *url.URL, userAgent string) (bool, error) {
	key := target.Scheme + "://" + target.Host

	rc.mu.RLock()
	cached, exists := rc.cache[key]
	rc.mu.RUnlock()

	if !exists || time.Now().After(cached.expiresAt) {
		cached = &RobotsTxt{
			data:      rc.load(ctx, key),
			expiresAt: time.Now().Add(rc.ttl),
		}
		rc.mu.Lock()
		rc.cache[key] = cached
		rc.mu.Unlock()
	}

	if cached.data == nil {
		return true, nil
	}
	return cached.data.TestAgent(target.RequestURI(), userAgent), nil
}

// load скачивает robots.txt; при сетевой ошибке или таймауте считаем, что ограничений нет
func (rc *RobotsCache) load(ctx context.Context, origin string) *robotstxt.RobotsData {
	ctx, cancel := context.WithTimeout(ctx, RobotsFetchTimeout)
	defer cancel()

	resp, err := rc.client.R().SetContext(ctx).Get(origin + "/robots.txt")
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	if err != nil {
		return nil
	}
	return data
}
