package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/internal/testutil"
	"github.com/glorpus-work/vguard/pkg/backend/local"
	"github.com/glorpus-work/vguard/pkg/config"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/fsutil"
	"github.com/glorpus-work/vguard/pkg/hooks"
	"github.com/glorpus-work/vguard/pkg/model"
	"github.com/glorpus-work/vguard/pkg/rpc"
)

type testEnv struct {
	inst    *testutil.Install
	cfg     *config.Config
	cfgPath string
}

func newTestEnv(t *testing.T, versions ...string) *testEnv {
	t.Helper()
	logger.SetTestOutput(io.Discard)
	t.Cleanup(logger.UnsetTestOutput)

	inst := testutil.NewInstall(t, versions...)
	state := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.App.RootDir = inst.Root
	cfg.App.ProcessNames = []string{"vguard-test-no-such-process"}
	cfg.Settings.StateDir = state
	cfg.Settings.BackupDir = filepath.Join(state, "backups")
	cfg.Settings.DownloadDir = filepath.Join(state, "downloads")
	cfg.Settings.HooksDir = filepath.Join(state, "hooks")

	env := &testEnv{inst: inst, cfg: cfg, cfgPath: filepath.Join(t.TempDir(), "config.yaml")}
	env.save(t)
	return env
}

func (e *testEnv) save(t *testing.T) {
	t.Helper()
	require.NoError(t, e.cfg.SaveConfig(e.cfgPath))
}

func newTestRoot(cfgPath string) *cobra.Command {
	var (
		path    = cfgPath
		verbose bool
		output  string
	)
	root := &cobra.Command{Use: "vguard", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringVarP(&output, "output", "o", "", "output format")
	ConfigPath = &path
	Verbose = &verbose
	OutputFormat = &output

	root.AddCommand(
		NewStatusCmd(),
		NewListCmd(),
		NewArchiveCmd(),
		NewCacheCmd(),
		NewSwitchCmd(),
		NewProtectCmd(),
		NewBackupCmd(),
		NewLaunchCmd(),
		NewHistoryCmd(),
		NewHooksCmd(),
		NewServeCmd(),
		NewUICmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)
	return root
}

func execute(ctx context.Context, cfgPath, stdin string, args ...string) (string, error) {
	root := newTestRoot(cfgPath)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(context.Background(), e.cfgPath, "", args...)
}

func (e *testEnv) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := e.run(t, append(args, "-o", "json")...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(context.Background(), "", "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vguard version "+Version)
	assert.Contains(t, out, "Git commit: ")
}

func TestConfigCommands(t *testing.T) {
	logger.SetTestOutput(io.Discard)
	defer logger.UnsetTestOutput()
	path := filepath.Join(t.TempDir(), "vguard", "config.yaml")
	ctx := context.Background()

	_, err := execute(ctx, path, "", "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(ctx, path, "", "config", "init")
	assert.ErrorIs(t, err, errors.ErrConfigFileExists)
	_, err = execute(ctx, path, "", "config", "init", "--force")
	require.NoError(t, err)

	_, err = execute(ctx, path, "", "config", "set", "protection.clean_cache", "false")
	require.NoError(t, err)
	out, err := execute(ctx, path, "", "config", "get", "protection.clean_cache")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, err = execute(ctx, path, "", "config", "get", "no.such.key")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
	_, err = execute(ctx, path, "", "config", "set", "backend.mode", "carrier-pigeon")
	assert.ErrorIs(t, err, errors.ErrInvalidBackendMode)

	out, err = execute(ctx, path, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "SETTING")
	assert.Contains(t, out, "protection.clean_cache")

	var settings map[string]string
	out, err = execute(ctx, path, "", "config", "show", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &settings))
	assert.Equal(t, "false", settings["protection.clean_cache"])
	assert.Equal(t, "local", settings["backend.mode"])
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")

	var report statusReport
	env.runJSON(t, &report, "status")
	assert.Equal(t, "protected", report.Status)
	assert.Equal(t, env.inst.Apps, report.AppsPath)
	assert.Equal(t, 2, report.Versions)
	assert.Equal(t, "unknown", report.ActiveState)
	require.NotNil(t, report.Protection)
	assert.False(t, report.Protection.IsProtected)
	assert.Empty(t, report.Errors)

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready")
	assert.Contains(t, out, "Active version:")
	assert.Contains(t, out, "Config locked:")
}

func TestStatus_NoInstallation(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.App.RootDir = filepath.Join(t.TempDir(), "missing")
	env.save(t)

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "CapCut installation not found")

	_, err = env.run(t, "protect", "run", "--keep", "1.5.0.230", "-y")
	assert.ErrorIs(t, err, errors.ErrInstallationNotFound)
}

func TestList(t *testing.T) {
	env := newTestEnv(t, "5.3.0.1964", "1.5.0.230")

	var versions []model.InstalledVersion
	env.runJSON(t, &versions, "list")
	require.Len(t, versions, 2)
	assert.Equal(t, "1.5.0.230", versions[0].Name)
	assert.Equal(t, "5.3.0.1964", versions[1].Name)

	out, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Total: 2 version(s)")
}

func TestSwitch(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")

	_, err := env.run(t, "switch", "5.3.0.1964")
	require.NoError(t, err)

	marker, err := os.ReadFile(filepath.Join(env.inst.Apps, local.ActiveMarker))
	require.NoError(t, err)
	assert.Equal(t, "5.3.0.1964\n", string(marker))
	assert.DirExists(t, env.inst.VersionPath("1.5.0.230"))

	var versions []model.InstalledVersion
	env.runJSON(t, &versions, "list")
	require.Len(t, versions, 2)
	assert.False(t, versions[0].Active)
	assert.True(t, versions[1].Active)

	var runs []model.RunRecord
	env.runJSON(t, &runs, "history")
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunSwitch, runs[0].Kind)
	assert.True(t, runs[0].Success)
	assert.Equal(t, env.inst.VersionPath("5.3.0.1964"), runs[0].Target)
}

func TestSwitch_UnknownVersion(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230")

	_, err := env.run(t, "switch", "9.9.9")
	assert.ErrorIs(t, err, errors.ErrUnknownVersion)
}

func TestProtect_Cancelled(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")

	out, err := execute(context.Background(), env.cfgPath, "n\n", "protect", "run", "--keep", "1.5.0.230")
	require.NoError(t, err)
	assert.Contains(t, out, "Keep 1.5.0.230 and delete 1 version(s):")
	assert.Contains(t, out, "Continue? [y/N]")
	assert.DirExists(t, env.inst.VersionPath("5.3.0.1964"))
}

func TestProtect_FullCycle(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")
	env.inst.AddCache(t, "Cache", fsutil.BytesPerMB)

	out, err := execute(context.Background(), env.cfgPath, "yes\n", "protect", "run", "--keep", "1.5.0.230")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ Update blockers created")
	assert.Contains(t, out, "✓ Configuration locked")
	assert.DirExists(t, env.inst.VersionPath("1.5.0.230"))
	assert.NoDirExists(t, env.inst.VersionPath("5.3.0.1964"))
	assert.NoDirExists(t, filepath.Join(env.inst.Root, "User Data", "Cache"))

	var status model.ProtectionStatus
	env.runJSON(t, &status, "protect", "status")
	assert.True(t, status.IsProtected)
	assert.True(t, status.ConfigLocked)
	assert.True(t, status.BlockersExist)

	var runs []model.RunRecord
	env.runJSON(t, &runs, "history", "--kind", "protect")
	require.Len(t, runs, 1)
	assert.Equal(t, []string{env.inst.VersionPath("5.3.0.1964")}, runs[0].Deleted)
	assert.True(t, runs[0].CleanCache)

	var backups []model.BackupMetadata
	env.runJSON(t, &backups, "backup", "list")
	require.Len(t, backups, 1)
	assert.Equal(t, "5.3.0.1964", backups[0].VersionName)

	_, err = env.run(t, "backup", "restore", backups[0].ID)
	require.NoError(t, err)
	assert.DirExists(t, env.inst.VersionPath("5.3.0.1964"))
	assert.FileExists(t, filepath.Join(env.inst.VersionPath("5.3.0.1964"), "CapCut.exe"))

	out, err = env.run(t, "protect", "remove")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ProductInfo.xml blocker removed")
	env.runJSON(t, &status, "protect", "status")
	assert.False(t, status.IsProtected)

	_, err = env.run(t, "backup", "clear", "-y")
	require.NoError(t, err)
	env.runJSON(t, &backups, "backup", "list")
	assert.Empty(t, backups)
}

func TestProtect_NoCleanCacheFlag(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")
	cacheDir := env.inst.AddCache(t, "Cache", 1024)

	out, err := env.run(t, "protect", "run", "--keep", env.inst.VersionPath("5.3.0.1964"), "--clean-cache=false", "-y")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Skipping cache cleaning (disabled)")
	assert.DirExists(t, cacheDir)
	assert.NoDirExists(t, env.inst.VersionPath("1.5.0.230"))
}

func TestProtect_PreHookAborts(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")
	require.NoError(t, os.MkdirAll(env.cfg.Settings.HooksDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.cfg.Settings.HooksDir, "pre-protect.tengo"),
		[]byte(`err = "not today"`), 0o644))

	_, err := env.run(t, "protect", "run", "--keep", "1.5.0.230", "-y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not today")
	assert.DirExists(t, env.inst.VersionPath("5.3.0.1964"))
}

func TestBackup_DeleteUnknown(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230")

	_, err := env.run(t, "backup", "delete", "nope")
	assert.ErrorIs(t, err, errors.ErrBackupNotFound)

	out, err := env.run(t, "backup", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCacheSizeAndClean(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230")
	env.inst.AddCache(t, "Cache", 2*fsutil.BytesPerMB)

	out, err := env.run(t, "cache", "size")
	require.NoError(t, err)
	assert.Equal(t, "Cache: 2.0 MB\n", out)

	_, err = env.run(t, "cache", "clean")
	require.NoError(t, err)

	out, err = env.run(t, "cache", "size")
	require.NoError(t, err)
	assert.Equal(t, "Cache: 0.0 MB\n", out)

	var runs []model.RunRecord
	env.runJSON(t, &runs, "history", "--kind", "clean")
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Success)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")

	_, err := env.run(t, "history", "--kind", "upgrade")
	assert.ErrorIs(t, err, errors.ErrConfigValidation)

	_, err = env.run(t, "switch", "1.5.0.230")
	require.NoError(t, err)
	_, err = env.run(t, "switch", "5.3.0.1964")
	require.NoError(t, err)

	out, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "switch")

	_, err = env.run(t, "history", "--prune", "1")
	require.NoError(t, err)
	var runs []model.RunRecord
	env.runJSON(t, &runs, "history")
	require.Len(t, runs, 1)
	assert.Equal(t, env.inst.VersionPath("5.3.0.1964"), runs[0].Target)
}

func TestArchiveList(t *testing.T) {
	env := newTestEnv(t, "CapCut_1.5.0.230")

	var curated []archiveRow
	env.runJSON(t, &curated, "archive", "list")
	require.NotEmpty(t, curated)
	assert.Equal(t, "Offline Purist", curated[0].Persona)
	assert.True(t, curated[0].Installed)

	var all []archiveRow
	env.runJSON(t, &all, "archive", "list", "--all")
	assert.Greater(t, len(all), len(curated))

	out, err := env.run(t, "archive", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "PERSONA")
	assert.Contains(t, out, "Offline Purist")
}

func TestArchiveDownload_Mirror(t *testing.T) {
	env := newTestEnv(t)
	payload := []byte("installer bytes")
	srv := testutil.NewFileServer(t, map[string][]byte{
		"/obj/capcutpc-packages-us/packages/CapCut_1_5_0_230_capcutpc_0.exe": payload,
	})
	dir := t.TempDir()

	out, err := env.run(t, "archive", "download", "1.5.0", "--mirror", srv.URL, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Offline Purist")

	data, err := os.ReadFile(filepath.Join(dir, "CapCut_1_5_0_230_capcutpc_0.exe"))
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = env.run(t, "archive", "download", "0.0.1", "--dir", dir)
	assert.ErrorIs(t, err, errors.ErrArchiveNotFound)
	_, err = env.run(t, "archive", "download", "1.5.0", "--mirror", "not a url")
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
}

func TestHooks(t *testing.T) {
	env := newTestEnv(t)

	var rows []hookRow
	env.runJSON(t, &rows, "hooks", "list")
	require.Len(t, rows, len(hooks.Types))
	for _, r := range rows {
		assert.False(t, r.Installed, r.Type)
	}

	out, err := env.run(t, "hooks", "init", "pre-protect")
	require.NoError(t, err)
	path := filepath.Join(env.cfg.Settings.HooksDir, "pre-protect.tengo")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hooks.HookTemplate(hooks.PreProtect), string(data))

	_, err = env.run(t, "hooks", "init", "pre-protect")
	assert.ErrorIs(t, err, errors.ErrConfigFileExists)
	_, err = env.run(t, "hooks", "init", "pre-protect", "--force")
	require.NoError(t, err)
	_, err = env.run(t, "hooks", "init", "pre-reboot")
	assert.ErrorIs(t, err, errors.ErrConfigValidation)

	env.runJSON(t, &rows, "hooks", "list")
	assert.True(t, rows[0].Installed)
	assert.Equal(t, hooks.PreProtect, rows[0].Type)
}

func TestRemoteBackend(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230", "5.3.0.1964")
	srv := httptest.NewServer(rpc.NewServer(newLocalBackend(env.cfg), "").Handler())
	t.Cleanup(srv.Close)

	env.cfg.Backend.Mode = config.BackendRemote
	env.cfg.Backend.URL = srv.URL
	// the front end must not see the install directly
	env.cfg.App.RootDir = filepath.Join(t.TempDir(), "elsewhere")
	env.save(t)

	var versions []model.InstalledVersion
	env.runJSON(t, &versions, "list")
	require.Len(t, versions, 2)
	assert.Equal(t, "1.5.0.230", versions[0].Name)

	_, err := env.run(t, "switch", "5.3.0.1964")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.inst.Apps, local.ActiveMarker))
}

func TestRemoteBackend_Token(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230")
	srv := httptest.NewServer(rpc.NewServer(newLocalBackend(env.cfg), "", rpc.WithToken("s3cret")).Handler())
	t.Cleanup(srv.Close)

	env.cfg.Backend.Mode = config.BackendRemote
	env.cfg.Backend.URL = srv.URL
	env.save(t)

	_, err := env.run(t, "cache", "size")
	require.ErrorIs(t, err, errors.ErrUnauthorized)

	env.cfg.Backend.Token = "s3cret"
	env.save(t)
	out, err := env.run(t, "cache", "size")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache:")

	var settings map[string]string
	env.runJSON(t, &settings, "config", "show")
	assert.Equal(t, "********", settings["backend.token"])
	assert.Empty(t, settings["server.token"])
}

func TestRemoteBackend_Down(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(nil)
	srv.Close()
	env.cfg.Backend.Mode = config.BackendRemote
	env.cfg.Backend.URL = srv.URL
	env.save(t)

	_, err := env.run(t, "cache", "size")
	assert.ErrorIs(t, err, errors.ErrTransport)
}

func TestServe_StopsWithContext(t *testing.T) {
	env := newTestEnv(t, "1.5.0.230")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(ctx, env.cfgPath, "", "serve", "--listen", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "Listening on 127.0.0.1:")
}

func TestLaunch_NoExecutable(t *testing.T) {
	env := newTestEnv(t)
	env.inst.WriteApps(t, "readme.txt", "no versions here")

	_, err := env.run(t, "launch")
	require.Error(t, err)
	assert.True(t, errors.IsBackendFailure(err))
}

func TestUI_UnknownMode(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "ui", "--mode", "kiosk")
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("Y\n"), &out, "Go?"))
	assert.True(t, confirm(strings.NewReader("yes"), &out, "Go?"))
	assert.False(t, confirm(strings.NewReader("\n"), &out, "Go?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "Go?"))
	assert.Contains(t, out.String(), "Go? [y/N]: ")
}
