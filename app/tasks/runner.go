package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/lysyi3m/wire-comb/app/arc"
	"github.com/lysyi3m/wire-comb/app/delivery"
	"github.com/lysyi3m/wire-comb/app/profile"
	"github.com/lysyi3m/wire-comb/app/wire"
)

var _ BatchRunner = (*Runner)(nil)

type limiterPair struct {
	story *delivery.RateLimiter
	photo *delivery.RateLimiter
}

// Runner executes batches one at a time, whether they come from the
// scheduler or the API.
type Runner struct {
	profiles   *profile.ProfileCache
	httpClient *http.Client
	dbPath     string
	userAgent  string

	mu       sync.Mutex
	limiters map[string]*limiterPair
}

func NewRunner(profiles *profile.ProfileCache, httpClient *http.Client, dbPath, userAgent string) *Runner {
	return &Runner{
		profiles:   profiles,
		httpClient: httpClient,
		dbPath:     dbPath,
		userAgent:  userAgent,
		limiters:   make(map[string]*limiterPair),
	}
}

func (r *Runner) Run(ctx context.Context, profileName, startPage string) (*delivery.Report, error) {
	p, err := r.profiles.Get(profileName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Info("Ingestion run started", "profile", p.Name, "org", p.OrgID, "source", p.Feed.Source, "start_page", startPage)

	source, err := r.source(p)
	if err != nil {
		return nil, err
	}

	limiters := r.limitersFor(p)
	downstream := arc.NewClient(r.httpClient, p.Delivery.BaseURL, p.OrgID, p.Delivery.Token, p.Delivery.Priority, r.userAgent)

	coordinator := delivery.NewCoordinator(source, downstream, delivery.Options{
		Profile:      p.Name,
		DBPath:       r.dbPath,
		MaxPages:     p.Feed.MaxPages,
		Site:         p.Site(),
		StoryLimiter: limiters.story,
		PhotoLimiter: limiters.photo,
	})

	return coordinator.Run(ctx, startPage)
}

func (r *Runner) source(p *profile.Profile) (wire.Source, error) {
	switch p.Feed.Source {
	case profile.SourceAP:
		return wire.NewReader(r.httpClient, p.Feed.URL, p.Feed.APIKey, p.Feed.Query, r.userAgent), nil
	case profile.SourceSyndication:
		return wire.NewSyndicationReader(r.httpClient, p.Feed.URL, r.userAgent), nil
	default:
		return nil, fmt.Errorf("unsupported feed source: %s", p.Feed.Source)
	}
}

// limitersFor keeps limiters across runs so the per-minute budget holds
// between consecutive batches of the same profile.
func (r *Runner) limitersFor(p *profile.Profile) *limiterPair {
	pair, ok := r.limiters[p.Name]
	if !ok {
		pair = &limiterPair{
			story: delivery.NewRateLimiter("story", p.Delivery.StoryRate),
			photo: delivery.NewRateLimiter("photo", p.Delivery.PhotoRate),
		}
		r.limiters[p.Name] = pair
	}
	return pair
}
