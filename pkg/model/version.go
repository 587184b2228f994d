// Package model provides the data structures exchanged between the vguard front end
// and a backend: installed versions, archive releases and operation results.
package model

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

// InstalledVersion is one installed copy of the application as reported by a backend scan.
// Path is the primary key.
type InstalledVersion struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
	// Active is set only when the backend knows which copy is active.
	Active bool `json:"active,omitempty"`
}

// RiskLevel grades how likely an archive release is to be broken by server-side changes.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Valid reports whether r is one of the known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ArchiveVersion is a downloadable historical release.
type ArchiveVersion struct {
	Version     string    `json:"version" yaml:"version"`
	Persona     string    `json:"persona" yaml:"persona"`
	Description string    `json:"description" yaml:"description"`
	Features    []string  `json:"features,omitempty" yaml:"features,omitempty"`
	RiskLevel   RiskLevel `json:"risk_level" yaml:"risk_level"`
	DownloadURL string    `json:"download_url" yaml:"download_url"`
}

// IsInstalled reports whether any installed version name contains this release's version label.
// The match is best effort: several archive entries may match the same installed copy.
func (a ArchiveVersion) IsInstalled(installed []InstalledVersion) bool {
	if a.Version == "" {
		return false
	}
	for _, iv := range installed {
		if strings.Contains(iv.Name, a.Version) {
			return true
		}
	}
	return false
}

// ParseVersion parses a version label leniently. Installed directory names usually look
// like "5.3.0.1964" and archive labels like "5.3.0".
func ParseVersion(label string) *version.Version {
	v, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(label), "v"))
	if err != nil {
		return nil
	}
	return v
}

// SortInstalled orders versions by parsed version, falling back to name order for
// labels that do not parse. Unparseable labels sort after parseable ones.
func SortInstalled(versions []InstalledVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		vi, vj := ParseVersion(versions[i].Name), ParseVersion(versions[j].Name)
		switch {
		case vi != nil && vj != nil:
			if vi.Equal(vj) {
				return versions[i].Name < versions[j].Name
			}
			return vi.LessThan(vj)
		case vi != nil:
			return true
		case vj != nil:
			return false
		default:
			return versions[i].Name < versions[j].Name
		}
	})
}

// TotalSizeMB sums the sizes of the given versions.
func TotalSizeMB(versions []InstalledVersion) float64 {
	var total float64
	for _, v := range versions {
		total += v.SizeMB
	}
	return total
}
