package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/auth"
	"github.com/glorpus-work/vguard/pkg/backend"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
)

// Client is a backend.Service that forwards every call to a vguard server.
type Client struct {
	base      string
	client    *http.Client
	userAgent string
	auth      auth.Authenticator
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAuth applies a to every request.
func WithAuth(a auth.Authenticator) ClientOption {
	return func(c *Client) { c.auth = a }
}

var _ backend.Service = (*Client)(nil)

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid backend URL %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend URL %q: unsupported scheme: %w", baseURL, errors.ErrConfigValidation)
	}
	c := &Client{
		base:      strings.TrimSuffix(u.String(), "/"),
		client:    &http.Client{Timeout: timeout},
		userAgent: "vguard/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call posts args to method and decodes the result into out. Every failure, including an
// error reported by the remote backend, is marked as a transport error.
func (c *Client) call(ctx context.Context, method string, args, out any) error {
	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return errors.Transport(method, errors.Wrap(err, "failed to encode arguments"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+pathPrefix+method, bytes.NewReader(body))
	if err != nil {
		return errors.Transport(method, errors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	if c.auth != nil {
		if err := c.auth.Apply(req); err != nil {
			return errors.Transport(method, errors.Wrap(err, "failed to apply authentication"))
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Transport(method, err)
	}
	defer func() { _ = resp.Body.Close() }()
	logger.Debug("Backend call", logger.Fields{"method": method, "status": resp.StatusCode, "took": time.Since(start)})
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.Transport(method, errors.ErrUnauthorized)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport(method, errors.Wrap(err, "failed to read response body"))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return errors.Transport(method, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}
		return errors.Transport(method, errors.Wrap(err, "failed to decode response"))
	}
	if env.Error != nil {
		return errors.Transport(method, env.Error.decode())
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Transport(method, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return errors.Transport(method, errors.Wrap(err, "failed to decode result"))
	}
	return nil
}

// PerformPrecheck implements backend.Backend.
func (c *Client) PerformPrecheck(ctx context.Context) (model.PrecheckResult, error) {
	var res model.PrecheckResult
	err := c.call(ctx, MethodPrecheck, nil, &res)
	return res, err
}

// ScanVersions implements backend.Backend.
func (c *Client) ScanVersions(ctx context.Context) ([]model.InstalledVersion, error) {
	res := []model.InstalledVersion{}
	if err := c.call(ctx, MethodScanVersions, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetArchiveVersions implements backend.Backend.
func (c *Client) GetArchiveVersions(ctx context.Context) ([]model.ArchiveVersion, error) {
	res := []model.ArchiveVersion{}
	if err := c.call(ctx, MethodArchiveVersions, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CalculateCacheSize implements backend.Backend.
func (c *Client) CalculateCacheSize(ctx context.Context) (float64, error) {
	var mb float64
	err := c.call(ctx, MethodCacheSize, nil, &mb)
	return mb, err
}

// CleanCache implements backend.Backend.
func (c *Client) CleanCache(ctx context.Context) (model.CacheCleanResult, error) {
	var res model.CacheCleanResult
	err := c.call(ctx, MethodCleanCache, nil, &res)
	return res, err
}

// SwitchVersion implements backend.Backend.
func (c *Client) SwitchVersion(ctx context.Context, path string) (model.SwitchResult, error) {
	var res model.SwitchResult
	err := c.call(ctx, MethodSwitchVersion, pathArgs{Path: path}, &res)
	return res, err
}

// ApplyProtection implements backend.Backend.
func (c *Client) ApplyProtection(ctx context.Context, req model.ProtectionRequest) (model.ProtectionResult, error) {
	if req.VersionsToDelete == nil {
		req.VersionsToDelete = []string{}
	}
	var res model.ProtectionResult
	err := c.call(ctx, MethodApplyProtection, req, &res)
	return res, err
}

// ProtectionStatus implements backend.Admin.
func (c *Client) ProtectionStatus(ctx context.Context) (model.ProtectionStatus, error) {
	var res model.ProtectionStatus
	err := c.call(ctx, MethodProtectionStatus, nil, &res)
	return res, err
}

// RemoveProtection implements backend.Admin.
func (c *Client) RemoveProtection(ctx context.Context) (model.ProtectionResult, error) {
	var res model.ProtectionResult
	err := c.call(ctx, MethodRemoveProtection, nil, &res)
	return res, err
}

// ListBackups implements backend.Admin.
func (c *Client) ListBackups(ctx context.Context) ([]model.BackupMetadata, error) {
	res := []model.BackupMetadata{}
	if err := c.call(ctx, MethodListBackups, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// RestoreBackup implements backend.Admin.
func (c *Client) RestoreBackup(ctx context.Context, id string) (model.RestoreResult, error) {
	var res model.RestoreResult
	err := c.call(ctx, MethodRestoreBackup, idArgs{ID: id}, &res)
	return res, err
}

// DeleteBackup implements backend.Admin.
func (c *Client) DeleteBackup(ctx context.Context, id string) error {
	return c.call(ctx, MethodDeleteBackup, idArgs{ID: id}, nil)
}

// ClearBackups implements backend.Admin.
func (c *Client) ClearBackups(ctx context.Context) (int, error) {
	var n int
	err := c.call(ctx, MethodClearBackups, nil, &n)
	return n, err
}

// BackupSize implements backend.Admin.
func (c *Client) BackupSize(ctx context.Context) (int64, error) {
	var n int64
	err := c.call(ctx, MethodBackupSize, nil, &n)
	return n, err
}

// Launch implements backend.Admin.
func (c *Client) Launch(ctx context.Context) (model.LaunchResult, error) {
	var res model.LaunchResult
	err := c.call(ctx, MethodLaunch, nil, &res)
	return res, err
}
