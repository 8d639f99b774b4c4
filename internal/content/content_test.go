package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	site, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, site.Projects)
	assert.Equal(t, "tui-mail", site.DefaultProject().ID)
	assert.NotEmpty(t, site.Profile.About)

	p, ok := site.Project("tui-music")
	require.True(t, ok)
	assert.True(t, p.Media[0].IsVideo())
	assert.Contains(t, p.Media[0].EmbedURL(), "dQw4w9WgXcQ")
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	site, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Zach", site.Profile.Name)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	doc := `
projects:
  - id: one
    title: One
    media:
      - { kind: image, src: /a.png, caption: A }
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	site, err := Load(path)
	require.NoError(t, err)
	require.Len(t, site.Projects, 1)
	assert.Equal(t, FrameNone, site.Projects[0].DeviceFrame)
}

func TestLoad_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.toml")
	doc := `
[profile]
name = "Ada"

[[projects]]
id = "engine"
title = "Analytical Engine"
deviceFrame = "browser"

  [[projects.media]]
  kind = "image"
  src = "/engine.png"
  caption = "Front"

  [[projects.media]]
  kind = "video"
  externalVideoId = "abc123"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	site, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", site.Profile.Name)
	require.Len(t, site.Projects, 1)
	p := site.Projects[0]
	assert.Equal(t, FrameBrowser, p.DeviceFrame)
	require.Len(t, p.Media, 2)
	assert.Equal(t, "/engine.png", p.Media[0].SourceRef)
	assert.True(t, p.Media[1].IsVideo())
	assert.Equal(t, "abc123", p.Media[1].ExternalVideoID)
}

func TestParseTOML_Invalid(t *testing.T) {
	_, err := ParseTOML([]byte(`[[projects]]
id = "x"
title = "X"
`))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ParseTOML([]byte(`projects = [`))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"no projects": `profile: {name: x}`,
		"no id": `
projects:
  - title: T
    media: [{kind: image, src: /a.png}]`,
		"duplicate id": `
projects:
  - {id: a, title: A, media: [{kind: image, src: /a.png}]}
  - {id: a, title: B, media: [{kind: image, src: /b.png}]}`,
		"no media": `
projects:
  - {id: a, title: A}`,
		"unknown kind": `
projects:
  - {id: a, title: A, media: [{kind: gif, src: /a.gif}]}`,
		"video without source": `
projects:
  - {id: a, title: A, media: [{kind: video}]}`,
		"unknown frame": `
projects:
  - {id: a, title: A, deviceFrame: watch, media: [{kind: image, src: /a.png}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("projects: [\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestSkillGroups_PreservesOrder(t *testing.T) {
	s := &Site{Skills: []Skill{
		{Name: "Go", Group: "Languages"},
		{Name: "Git", Group: "Tools"},
		{Name: "Python", Group: "Languages"},
	}}
	groups := s.SkillGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Languages", groups[0].Name)
	assert.Len(t, groups[0].Skills, 2)
	assert.Equal(t, "Tools", groups[1].Name)
}

func TestEmbedURL_NoExternalID(t *testing.T) {
	assert.Empty(t, MediaItem{Kind: KindVideo, SourceRef: "/v.mp4"}.EmbedURL())
}
