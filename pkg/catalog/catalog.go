// Package catalog holds the embedded list of downloadable historical releases: a short
// curated list with one release per kind of user, and the full release list.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
)

//go:embed curated.yaml
var curatedYAML []byte

//go:embed releases.yaml
var releasesYAML []byte

// Descriptions given to entries of the full list.
const (
	DescLastCompatible = "Last version compatible with CC Version Guard"
	DescPrerelease     = "Beta/Test release"
	DescStable         = "Stable release"
	DescRelease        = "Release version"
)

// lastCompatible is the label of the newest release protection is known to work with.
const lastCompatible = "5.4.0 (Beta6)"

type release struct {
	Label   string `yaml:"label"`
	Version string `yaml:"version"`
	URL     string `yaml:"url"`
}

type curatedFile struct {
	Curated []model.ArchiveVersion `yaml:"curated"`
}

type releasesFile struct {
	Releases []release `yaml:"releases"`
}

var (
	loadOnce sync.Once
	curated  []model.ArchiveVersion
	all      []model.ArchiveVersion
	loadErr  error
)

func load() {
	var cf curatedFile
	if err := yaml.Unmarshal(curatedYAML, &cf); err != nil {
		loadErr = fmt.Errorf("failed to parse curated catalog: %w", err)
		return
	}
	var rf releasesFile
	if err := yaml.Unmarshal(releasesYAML, &rf); err != nil {
		loadErr = fmt.Errorf("failed to parse release catalog: %w", err)
		return
	}
	curated = cf.Curated
	all = make([]model.ArchiveVersion, 0, len(rf.Releases))
	for _, r := range rf.Releases {
		if r.Label == "" || r.Version == "" || r.URL == "" {
			continue
		}
		all = append(all, model.ArchiveVersion{
			Version:     r.Version,
			Persona:     r.Label,
			Description: Describe(r.Label),
			RiskLevel:   RiskFor(r.Version),
			DownloadURL: r.URL,
		})
	}
}

// Curated returns the hand-picked releases in display order.
func Curated() ([]model.ArchiveVersion, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	return clone(curated), nil
}

// All returns every known release, newest first.
func All() ([]model.ArchiveVersion, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	return clone(all), nil
}

// Find looks a release up by version or label. Curated entries win over the full list
// so the persona and feature list are kept when both carry the version.
func Find(query string) (model.ArchiveVersion, error) {
	q := strings.TrimSpace(query)
	list, err := Curated()
	if err != nil {
		return model.ArchiveVersion{}, err
	}
	for _, a := range list {
		if a.Version == q || strings.EqualFold(a.Persona, q) {
			return a, nil
		}
	}
	list, err = All()
	if err != nil {
		return model.ArchiveVersion{}, err
	}
	for _, a := range list {
		if a.Persona == q {
			return a, nil
		}
	}
	for _, a := range list {
		if a.Version == q {
			return a, nil
		}
	}
	return model.ArchiveVersion{}, errors.Wrapf(errors.ErrArchiveNotFound, "%q", q)
}

// RiskFor grades a release by major version: 4 and up is high, 3 is medium, older is low.
// Labels that do not parse are treated as high.
func RiskFor(label string) model.RiskLevel {
	v := model.ParseVersion(label)
	if v == nil {
		return model.RiskHigh
	}
	switch major := v.Segments()[0]; {
	case major >= 4:
		return model.RiskHigh
	case major == 3:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Describe derives the short description of a full-list entry from its label.
func Describe(label string) string {
	switch {
	case label == lastCompatible:
		return DescLastCompatible
	case strings.Contains(label, "Beta") || strings.Contains(label, "Test"):
		return DescPrerelease
	case strings.Contains(label, "Latest"):
		return DescStable
	default:
		return DescRelease
	}
}

func clone(in []model.ArchiveVersion) []model.ArchiveVersion {
	out := make([]model.ArchiveVersion, len(in))
	for i, a := range in {
		out[i] = a
		out[i].Features = append([]string(nil), a.Features...)
	}
	return out
}
