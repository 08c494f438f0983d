package profile

import (
	"github.com/lysyi3m/wire-comb/app/ans"
	"github.com/lysyi3m/wire-comb/app/cfg"
)

type SourceKind string

const (
	SourceAP          SourceKind = "ap"
	SourceSyndication SourceKind = "syndication"
)

// Profile holds everything a run needs to know about one organization.
type Profile struct {
	Name        string   // Derived from filename (without .yml extension)
	OrgID       string   `yaml:"org"`
	Website     string   `yaml:"website"`
	Section     string   `yaml:"section"`
	Distributor string   `yaml:"distributor"`
	Enabled     bool     `yaml:"enabled"`
	Feed        Feed     `yaml:"feed"`
	Delivery    Delivery `yaml:"delivery"`
}

type Feed struct {
	Source   SourceKind `yaml:"source"`
	URL      string     `yaml:"url"`
	APIKey   string     `yaml:"api_key"`
	Query    string     `yaml:"query"`
	MaxPages int        `yaml:"max_pages"`
}

type Delivery struct {
	BaseURL            string `yaml:"base_url"`
	Token              string `yaml:"token"`
	Priority           string `yaml:"priority"`
	StoryRate          int    `yaml:"story_rate"` // per minute
	PhotoRate          int    `yaml:"photo_rate"` // per minute
	DeleteAfterDays    int    `yaml:"delete_after_days"`
	PhotoRetentionDays int    `yaml:"photo_retention_days"`
}

// FromConfig builds the profile used when no profile files exist. Its values
// also serve as defaults for every profile file.
func FromConfig(c *cfg.Cfg) Profile {
	return Profile{
		Name:    "default",
		OrgID:   c.OrgID,
		Website: c.Website,
		Section: c.Section,
		Enabled: true,
		Feed: Feed{
			Source:   SourceAP,
			URL:      c.FeedURL,
			APIKey:   c.FeedAPIKey,
			Query:    c.FeedQuery,
			MaxPages: c.MaxPages,
		},
		Delivery: Delivery{
			BaseURL:            c.ArcBaseURL,
			Token:              c.ArcToken,
			Priority:           c.ArcPriority,
			StoryRate:          c.StoryRate,
			PhotoRate:          c.PhotoRate,
			DeleteAfterDays:    c.DeleteAfterDays,
			PhotoRetentionDays: c.PhotoRetentionDays,
		},
	}
}

func (p *Profile) Site() ans.Site {
	return ans.Site{
		OrgID:              p.OrgID,
		Website:            p.Website,
		Section:            p.Section,
		DistributorName:    p.Distributor,
		DeleteAfterDays:    p.Delivery.DeleteAfterDays,
		PhotoRetentionDays: p.Delivery.PhotoRetentionDays,
	}
}
