package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aidanlsb/favs/internal/config"
	"github.com/aidanlsb/favs/internal/paths"
	"github.com/aidanlsb/favs/internal/testutil"
)

type cliEnv struct {
	home       *testutil.TestHome
	configPath string
	statePath  string
	storePath  string
	launcher   *testutil.RecordingLauncher
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	home := testutil.NewTestHome(t).
		WithApp("alpha.desktop", "Alpha").
		WithApp("beta.desktop", "Beta", "Actions=private;", "", "[Desktop Action private]", "Name=Private Window", "Exec=beta --private").
		WithFile("docs/x.txt", "x").
		WithFile("legacy.yaml", "favorites:\n  - beta.desktop\n  - alpha.desktop\n").
		Build()

	t.Setenv("XDG_DATA_HOME", home.Abs("data"))
	t.Setenv("XDG_DATA_DIRS", home.Abs("system"))

	e := &cliEnv{
		home:       home,
		configPath: home.Abs("config/config.toml"),
		statePath:  home.Abs("config/state.toml"),
		storePath:  home.Abs("store/activities.db"),
		launcher:   &testutil.RecordingLauncher{},
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(e.configPath), 0o755))
	content := fmt.Sprintf("store = %q\napplication_dirs = [%q]\n", e.storePath, home.AppsDir)
	require.NoError(t, os.WriteFile(e.configPath, []byte(content), 0o644))

	prevLauncher := launcher
	launcher = e.launcher
	t.Cleanup(func() {
		launcher = prevLauncher
		logger = zap.NewNop()
		resetFlags(rootCmd)
	})
	return e
}

// resetFlags restores every flag to its default so commands can run again
// in the same process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "favs %s", strings.Join(args, " "))
	return out
}

type listResponse struct {
	OK   bool `json:"ok"`
	Data struct {
		Enabled   bool          `json:"enabled"`
		Favorites []favoriteRow `json:"favorites"`
	} `json:"data"`
	Error *ErrorInfo `json:"error"`
}

func (e *cliEnv) list(t *testing.T, args ...string) listResponse {
	t.Helper()
	out := e.mustRun(t, append([]string{"list", "--json"}, args...)...)
	var resp listResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.True(t, resp.OK, out)
	return resp
}

func names(rows []favoriteRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestAddListRemove(t *testing.T) {
	e := newCLIEnv(t)
	x := e.home.Abs("docs/x.txt")

	e.mustRun(t, "add", "alpha.desktop")
	e.mustRun(t, "add", "beta.desktop")
	e.mustRun(t, "add", x, "--index", "0")

	resp := e.list(t)
	assert.True(t, resp.Data.Enabled)
	assert.Equal(t, []string{"x.txt", "Alpha", "Beta"}, names(resp.Data.Favorites))
	assert.Equal(t, paths.FileURL(x), resp.Data.Favorites[0].ID)
	assert.Equal(t, "applications:beta.desktop", resp.Data.Favorites[2].URL)
	assert.Equal(t, []string{"private"}, resp.Data.Favorites[2].Actions)

	out := e.mustRun(t, "list")
	assert.Equal(t, "0\tx.txt\t"+paths.FileURL(x)+"\n1\tAlpha\talpha.desktop\n2\tBeta\tbeta.desktop\n", out,
		"piped output is plain tab-separated lines")

	e.mustRun(t, "remove", "applications:alpha.desktop")
	assert.Equal(t, []string{"x.txt", "Beta"}, names(e.list(t).Data.Favorites))

	_, err := e.run(t, "remove", "alpha.desktop")
	assert.Error(t, err, "removing a non-favorite reports it")
}

func TestAddMissingFile(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run(t, "add", e.home.Abs("docs/nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
	assert.NoFileExists(t, e.storePath, "store is not touched")

	out, err := e.run(t, "--json", "add", e.home.Abs("docs/nope.txt"))
	require.NoError(t, err, "JSON mode reports errors in the envelope")
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, ErrFileReadError, resp.Error.Code)
}

func TestMove(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "alpha.desktop")
	e.mustRun(t, "add", "beta.desktop")
	e.mustRun(t, "add", e.home.Abs("docs/x.txt"))

	e.mustRun(t, "move", "0", "2")
	assert.Equal(t, []string{"Beta", "x.txt", "Alpha"}, names(e.list(t).Data.Favorites))

	_, err := e.run(t, "move", "0", "3")
	assert.Error(t, err)
	_, err = e.run(t, "move", "a", "1")
	assert.Error(t, err)
}

func TestYAMLOutput(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "alpha.desktop")

	out := e.mustRun(t, "list", "--yaml")
	assert.Contains(t, out, "- row: 0\n")
	assert.Contains(t, out, "name: Alpha\n")
	assert.Contains(t, out, "url: applications:alpha.desktop\n")
}

func TestIsAndActivities(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "alpha.desktop")

	for _, id := range []string{
		"alpha.desktop",
		"applications:alpha.desktop",
		"applications://alpha.desktop",
		e.home.Abs("applications/alpha.desktop"),
	} {
		assert.Equal(t, "true\n", e.mustRun(t, "is", id), id)
	}
	assert.Equal(t, "false\n", e.mustRun(t, "is", "beta.desktop"))

	var resp struct {
		Data struct {
			Favorite bool     `json:"favorite"`
			Aliases  []string `json:"aliases"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "is", "applications://alpha.desktop")), &resp))
	assert.True(t, resp.Data.Favorite)
	assert.Contains(t, resp.Data.Aliases, "applications:alpha.desktop")
	assert.Contains(t, resp.Data.Aliases, e.home.Abs("applications/alpha.desktop"))

	out := e.mustRun(t, "activities", "alpha.desktop")
	assert.Contains(t, out, "Default")
	out = e.mustRun(t, "activities", "beta.desktop")
	assert.Contains(t, out, "not linked")
}

func TestActivities(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "alpha.desktop")
	e.mustRun(t, "add", "beta.desktop", "--activity", ":global")

	out := e.mustRun(t, "--json", "activity", "create", "Work")
	var created struct {
		Data activityInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.Data.ID)

	e.mustRun(t, "add", e.home.Abs("docs/x.txt"), "--activity", "work")

	assert.Equal(t, []string{"Alpha", "Beta"}, names(e.list(t).Data.Favorites))
	assert.Equal(t, []string{"Beta", "x.txt"}, names(e.list(t, "--activity", "Work").Data.Favorites))

	e.mustRun(t, "activity", "use", "Work")
	assert.Contains(t, e.mustRun(t, "activity", "current"), "Work")
	assert.Equal(t, []string{"Beta", "x.txt"}, names(e.list(t).Data.Favorites))

	out = e.mustRun(t, "activity", "list")
	assert.Contains(t, out, "* "+created.Data.ID+"  Work")
	assert.Contains(t, out, "  Default")

	_, err := e.run(t, "activity", "use", "Nope")
	assert.Error(t, err)
	_, err = e.run(t, "activity", "use", "Wrok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "Work"`)
	_, err = e.run(t, "activity", "use", ":global")
	assert.Error(t, err)
	_, err = e.run(t, "add", "alpha.desktop", "--activity", ":any")
	assert.Error(t, err)
}

func TestImportOnce(t *testing.T) {
	e := newCLIEnv(t)
	legacy := e.home.Abs("legacy.yaml")

	out := e.mustRun(t, "import", legacy)
	assert.Contains(t, out, "Imported 2 favorites")
	assert.Equal(t, []string{"Beta", "Alpha"}, names(e.list(t).Data.Favorites))

	state, err := config.LoadState(e.statePath)
	require.NoError(t, err)
	assert.True(t, state.LegacyImported)

	_, err = e.run(t, "import", legacy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already imported")

	e.mustRun(t, "remove", "beta.desktop", "--activity", ":any")
	e.mustRun(t, "import", legacy, "--force")
	assert.ElementsMatch(t, []string{"Beta", "Alpha"}, names(e.list(t).Data.Favorites))
}

func TestReadLegacyFavorites(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	tests := []struct {
		name    string
		file    string
		content string
		want    []string
		wantErr bool
	}{
		{name: "yaml sequence", file: "a.yaml", content: "- a.desktop\n- ' '\n- /tmp/b\n", want: []string{"a.desktop", "/tmp/b"}},
		{name: "yaml mapping", file: "b.yml", content: "favorites: [a.desktop, ktp://x]\n", want: []string{"a.desktop", "ktp://x"}},
		{name: "empty yaml", file: "c.yaml", content: "", want: nil},
		{name: "bad yaml", file: "d.yaml", content: "favorites: [\n", wantErr: true},
		{name: "ini", file: "appletsrc", content: "[General]\nfavorites=a.desktop,b.desktop, ktp://x\n", want: []string{"a.desktop", "b.desktop", "ktp://x"}},
		{name: "ini without key", file: "other.rc", content: "[General]\nfoo=bar\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLegacyFavorites(write(tt.file, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunTriggersEntries(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "beta.desktop")
	e.mustRun(t, "add", e.home.Abs("docs/x.txt"))

	e.mustRun(t, "run", "0")
	e.mustRun(t, "run", "0", "private")
	e.mustRun(t, "run", "1")

	require.Len(t, e.launcher.Execs, 2)
	assert.Equal(t, []string{"beta"}, e.launcher.Execs[0])
	assert.Equal(t, []string{"beta", "--private"}, e.launcher.Execs[1])
	assert.Equal(t, []string{e.home.Abs("docs/x.txt")}, e.launcher.Opens)

	_, err := e.run(t, "run", "5")
	assert.Error(t, err)
	_, err = e.run(t, "run", "0", "nope")
	assert.Error(t, err)
}

func TestInvalidFavoritesAreDroppedOnList(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "alpha.desktop")
	e.mustRun(t, "add", e.home.Abs("docs/x.txt"))
	e.mustRun(t, "add", "beta.desktop")
	e.home.Remove("docs/x.txt")

	assert.Equal(t, []string{"Alpha", "Beta"}, names(e.list(t).Data.Favorites))
	assert.Equal(t, "false\n", e.mustRun(t, "is", e.home.Abs("docs/x.txt")))
}

func TestEnableDisable(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "alpha.desktop")

	e.mustRun(t, "disable")
	resp := e.list(t)
	assert.False(t, resp.Data.Enabled)
	assert.Empty(t, resp.Data.Favorites)

	e.mustRun(t, "enable")
	assert.Len(t, e.list(t).Data.Favorites, 1)
}

func TestMaxFavoritesLimitsList(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "add", "alpha.desktop")
	e.mustRun(t, "add", "beta.desktop")
	e.mustRun(t, "add", e.home.Abs("docs/x.txt"))

	e.mustRun(t, "config", "set", "--max-favorites", "2")
	assert.Equal(t, []string{"Alpha", "Beta"}, names(e.list(t).Data.Favorites))

	cfg, err := config.LoadFrom(e.configPath)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxFavorites)
	assert.Equal(t, e.storePath, cfg.Store, "existing keys survive")

	_, err = e.run(t, "config", "set", "--drop_timeout", "soon")
	assert.Error(t, err)
	_, err = e.run(t, "config", "set")
	assert.Error(t, err)
}

func TestConfigShowAndInit(t *testing.T) {
	e := newCLIEnv(t)

	out := e.mustRun(t, "config", "show")
	assert.Contains(t, out, "store:  "+e.storePath)
	assert.Contains(t, out, "max_favorites: 15")

	fresh := e.home.Abs("fresh/config.toml")
	out = e.mustRun(t, "--config", fresh, "config", "init")
	assert.Contains(t, out, "Created")
	assert.FileExists(t, fresh)
}

func TestDebugLogsToStderr(t *testing.T) {
	e := newCLIEnv(t)
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"--config", e.configPath, "--debug", "add", "alpha.desktop"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, errOut.String(), "DEBUG")
	assert.Contains(t, errOut.String(), "adding favorite")
	assert.NotContains(t, out.String(), "DEBUG")

	errOut.Reset()
	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--config", e.configPath, "--debug", "list"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, errOut.String(), "alias index")
	assert.Contains(t, errOut.String(), "applications:alpha.desktop")
}
