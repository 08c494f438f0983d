package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	ProfilesDir       string
	Port              string
	SchedulerInterval int
	APIAccessKey      string

	// Upstream wire feed
	FeedURL    string
	FeedAPIKey string
	FeedQuery  string
	MaxPages   int

	// Downstream content APIs
	ArcBaseURL  string
	ArcToken    string
	ArcPriority string
	OrgID       string
	Website     string
	Section     string

	// Delivery policy
	StoryRate          int // deliveries per minute
	PhotoRate          int // deliveries per minute
	DeleteAfterDays    int
	PhotoRetentionDays int
	HTTPTimeout        time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
