package profile

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type ProfileCache struct {
	profilesDir string
	base        Profile
	cache       map[string]*Profile
	mu          sync.RWMutex
}

// NewProfileCache creates a cache whose profile files inherit unset values from base.
func NewProfileCache(profilesDir string, base Profile) *ProfileCache {
	return &ProfileCache{
		profilesDir: profilesDir,
		base:        base,
		cache:       make(map[string]*Profile),
	}
}

func (pc *ProfileCache) Run() error {
	var files []string
	if _, err := os.Stat(pc.profilesDir); err == nil {
		files, err = filepath.Glob(filepath.Join(pc.profilesDir, "*.yml"))
		if err != nil {
			return fmt.Errorf("failed to find YML files: %w", err)
		}
	}

	for _, file := range files {
		// Derive profile name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		name := fileName[:len(fileName)-4]

		p, err := pc.Load(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Profile loaded", "profile", name, "org", p.OrgID, "enabled", p.Enabled, "source", p.Feed.Source)
	}

	if len(files) == 0 && pc.base.OrgID != "" {
		p := pc.base
		p.applyDefaults()
		if err := p.validate(); err != nil {
			return fmt.Errorf("invalid default profile: %w", err)
		}

		pc.mu.Lock()
		pc.cache[p.Name] = &p
		pc.mu.Unlock()

		slog.Debug("Default profile derived from flags", "org", p.OrgID)
	}

	return nil
}

// Load reads (or re-reads) one profile file and caches it.
func (pc *ProfileCache) Load(name string) (*Profile, error) {
	profileFile := filepath.Join(pc.profilesDir, name+".yml")

	data, err := os.ReadFile(profileFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	p := pc.base
	p.Enabled = false
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	p.Name = name
	p.applyDefaults()

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", profileFile, err)
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache[p.Name] = &p

	return &p, nil
}

func (pc *ProfileCache) Get(name string) (*Profile, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	p, ok := pc.cache[name]
	if !ok {
		return nil, fmt.Errorf("profile with name '%s' not found", name)
	}
	return p, nil
}

func (pc *ProfileCache) All() map[string]*Profile {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return maps.Clone(pc.cache)
}

func (pc *ProfileCache) Enabled() map[string]*Profile {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	enabled := make(map[string]*Profile)
	for k, v := range pc.cache {
		if v.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (pc *ProfileCache) Count() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.cache)
}

func (p *Profile) applyDefaults() {
	if p.Feed.Source == "" {
		p.Feed.Source = SourceAP
	}
	if p.Feed.MaxPages == 0 {
		p.Feed.MaxPages = 1
	}
	if p.Delivery.BaseURL == "" {
		p.Delivery.BaseURL = "https://api.{org}.arcpublishing.com"
	}
	if p.Delivery.Priority == "" {
		p.Delivery.Priority = "ingestion"
	}
	if p.Delivery.StoryRate == 0 {
		p.Delivery.StoryRate = 10
	}
	if p.Delivery.PhotoRate == 0 {
		p.Delivery.PhotoRate = 60
	}
	if p.Delivery.DeleteAfterDays == 0 {
		p.Delivery.DeleteAfterDays = 3
	}
	if p.Delivery.PhotoRetentionDays == 0 {
		p.Delivery.PhotoRetentionDays = 60
	}
	if p.Distributor == "" {
		if p.Feed.Source == SourceAP {
			p.Distributor = "Associated Press"
		} else {
			p.Distributor = p.Name
		}
	}
}

func (p *Profile) validate() error {
	requiredFields := map[string]string{
		"profile name": p.Name,
		"org":          p.OrgID,
		"website":      p.Website,
		"section":      p.Section,
		"feed URL":     p.Feed.URL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	positiveFields := map[string]int{
		"max pages":            p.Feed.MaxPages,
		"story rate":           p.Delivery.StoryRate,
		"photo rate":           p.Delivery.PhotoRate,
		"delete after days":    p.Delivery.DeleteAfterDays,
		"photo retention days": p.Delivery.PhotoRetentionDays,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	switch p.Feed.Source {
	case SourceAP, SourceSyndication:
	default:
		return fmt.Errorf("invalid feed source: %s", p.Feed.Source)
	}

	return nil
}
