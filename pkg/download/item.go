package download

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
)

// Item is one installer to download.
type Item struct {
	ID       string   // release label, unique within a batch
	URL      *url.URL // source URL
	SHA256   string   // optional hex digest, verified when set
	Filename string   // optional; defaults to the last element of the URL path
}

// ItemFor builds the download item of an archive release.
func ItemFor(a model.ArchiveVersion) (Item, error) {
	if a.DownloadURL == "" {
		return Item{}, fmt.Errorf("%s has no download URL: %w", a.Persona, errors.ErrDownloadFailed)
	}
	u, err := url.Parse(a.DownloadURL)
	if err != nil {
		return Item{}, errors.Wrapf(err, "invalid download URL for %s", a.Persona)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Item{}, fmt.Errorf("unsupported URL scheme %q: %w", u.Scheme, errors.ErrDownloadFailed)
	}
	id := a.Persona
	if id == "" {
		id = a.Version
	}
	return Item{ID: id, URL: u}, nil
}

// ParseMirror validates a mirror base URL. Only its scheme and host are used.
func ParseMirror(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.Wrapf(errors.ErrConfigValidation, "invalid mirror URL %q", raw)
	}
	return u, nil
}

// filename is the local name of the installer, never a path.
func (it Item) filename() string {
	if it.Filename != "" {
		return filepath.Base(it.Filename)
	}
	if base := path.Base(it.URL.Path); base != "" && base != "/" && base != "." {
		return base
	}
	h := sha256.Sum256([]byte(it.URL.String()))
	return hex.EncodeToString(h[:]) + ".exe"
}

func (it Item) digest() string { return strings.ToLower(strings.TrimSpace(it.SHA256)) }
