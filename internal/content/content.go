// Package content holds the portfolio's static data: profile copy, skills,
// experience, and the projects whose media the carousel presents.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSite []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid content")

// MediaKind distinguishes still images from videos.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// DeviceFrame is the mock device a project's media is drawn inside.
type DeviceFrame string

const (
	FrameNone    DeviceFrame = "none"
	FramePhone   DeviceFrame = "phone"
	FrameLaptop  DeviceFrame = "laptop"
	FrameBrowser DeviceFrame = "browser"
)

// MediaItem is one entry in a project's gallery.
type MediaItem struct {
	Kind            MediaKind `yaml:"kind" toml:"kind" json:"kind"`
	SourceRef       string    `yaml:"src" toml:"src" json:"src"`
	Caption         string    `yaml:"caption" toml:"caption" json:"caption"`
	ExternalVideoID string    `yaml:"externalVideoId,omitempty" toml:"externalVideoId,omitempty" json:"external_video_id,omitempty"`
}

// IsVideo reports whether the item plays as a video.
func (m MediaItem) IsVideo() bool { return m.Kind == KindVideo }

// EmbedURL returns the player URL for externally hosted videos, or "".
func (m MediaItem) EmbedURL() string {
	if m.ExternalVideoID == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + m.ExternalVideoID +
		"?enablejsapi=1&autoplay=1&mute=1&playsinline=1&controls=0&rel=0&modestbranding=1"
}

// Project is a portfolio entry. Projects are never mutated after load.
type Project struct {
	ID           string      `yaml:"id" toml:"id" json:"id"`
	Title        string      `yaml:"title" toml:"title" json:"title"`
	Description  string      `yaml:"description" toml:"description" json:"description"`
	Technologies []string    `yaml:"technologies" toml:"technologies" json:"technologies"`
	Media        []MediaItem `yaml:"media" toml:"media" json:"media"`
	DeviceFrame  DeviceFrame `yaml:"deviceFrame" toml:"deviceFrame" json:"device_frame"`
	Category     string      `yaml:"category" toml:"category" json:"category"`
	Link         string      `yaml:"link,omitempty" toml:"link,omitempty" json:"link,omitempty"`
}

type Profile struct {
	Name      string   `yaml:"name" toml:"name"`
	Tagline   string   `yaml:"tagline" toml:"tagline"`
	About     []string `yaml:"about" toml:"about"`
	ResumeURL string   `yaml:"resumeUrl,omitempty" toml:"resumeUrl,omitempty"`
}

type Skill struct {
	Name  string `yaml:"name" toml:"name"`
	Group string `yaml:"group" toml:"group"`
	Icon  string `yaml:"icon,omitempty" toml:"icon,omitempty"`
}

// Entry is a row in the experience or education timeline.
type Entry struct {
	Title        string   `yaml:"title" toml:"title"`
	Organization string   `yaml:"organization" toml:"organization"`
	Start        string   `yaml:"start" toml:"start"`
	End          string   `yaml:"end" toml:"end"`
	Logo         string   `yaml:"logo,omitempty" toml:"logo,omitempty"`
	Bullets      []string `yaml:"bullets" toml:"bullets"`
}

type Link struct {
	Label string `yaml:"label" toml:"label"`
	URL   string `yaml:"url" toml:"url"`
}

type Contact struct {
	Email    string `yaml:"email" toml:"email"`
	Phone    string `yaml:"phone,omitempty" toml:"phone,omitempty"`
	Location string `yaml:"location,omitempty" toml:"location,omitempty"`
	Links    []Link `yaml:"links" toml:"links"`
}

// Site is the whole content document.
type Site struct {
	Profile    Profile   `yaml:"profile" toml:"profile"`
	Skills     []Skill   `yaml:"skills" toml:"skills"`
	Experience []Entry   `yaml:"experience" toml:"experience"`
	Education  []Entry   `yaml:"education" toml:"education"`
	Projects   []Project `yaml:"projects" toml:"projects"`
	Contact    Contact   `yaml:"contact" toml:"contact"`
}

// Default returns the embedded content document.
func Default() (*Site, error) {
	return Parse(defaultSite)
}

// Load reads and validates a content file. Files ending in .toml are
// decoded as TOML, anything else as YAML. An empty path loads the
// embedded default.
func Load(path string) (*Site, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML content document.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return finish(&s)
}

// ParseTOML decodes and validates a TOML content document.
func ParseTOML(data []byte) (*Site, error) {
	var s Site
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return finish(&s)
}

func finish(s *Site) (*Site, error) {
	for i := range s.Projects {
		if s.Projects[i].DeviceFrame == "" {
			s.Projects[i].DeviceFrame = FrameNone
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the invariants the carousel relies on.
func (s *Site) Validate() error {
	if len(s.Projects) == 0 {
		return fmt.Errorf("%w: no projects", ErrInvalid)
	}
	seen := make(map[string]bool, len(s.Projects))
	for i, p := range s.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("%w: project %d has no id", ErrInvalid, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate project id %q", ErrInvalid, p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("%w: project %q has no title", ErrInvalid, p.ID)
		}
		switch p.DeviceFrame {
		case FrameNone, FramePhone, FrameLaptop, FrameBrowser:
		default:
			return fmt.Errorf("%w: project %q has unknown device frame %q", ErrInvalid, p.ID, p.DeviceFrame)
		}
		if len(p.Media) == 0 {
			return fmt.Errorf("%w: project %q has no media", ErrInvalid, p.ID)
		}
		for j, m := range p.Media {
			if err := m.validate(); err != nil {
				return fmt.Errorf("%w: project %q media %d: %v", ErrInvalid, p.ID, j, err)
			}
		}
	}
	return nil
}

func (m MediaItem) validate() error {
	switch m.Kind {
	case KindImage:
		if m.SourceRef == "" {
			return errors.New("image has no src")
		}
	case KindVideo:
		if m.SourceRef == "" && m.ExternalVideoID == "" {
			return errors.New("video needs src or externalVideoId")
		}
	default:
		return fmt.Errorf("unknown kind %q", m.Kind)
	}
	return nil
}

// Project returns the project with the given id.
func (s *Site) Project(id string) (*Project, bool) {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return &s.Projects[i], true
		}
	}
	return nil, false
}

// DefaultProject is the project selected when a carousel mounts.
func (s *Site) DefaultProject() *Project {
	return &s.Projects[0]
}

// SkillGroups returns skills bucketed by group, in first-seen group order.
func (s *Site) SkillGroups() []SkillGroup {
	var groups []SkillGroup
	index := map[string]int{}
	for _, sk := range s.Skills {
		i, ok := index[sk.Group]
		if !ok {
			i = len(groups)
			index[sk.Group] = i
			groups = append(groups, SkillGroup{Name: sk.Group})
		}
		groups[i].Skills = append(groups[i].Skills, sk)
	}
	return groups
}

type SkillGroup struct {
	Name   string
	Skills []Skill
}
