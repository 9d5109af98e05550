package cli

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
	"github.com/matzehuels/graphypad/pkg/observability"
	"github.com/matzehuels/graphypad/pkg/pipeline"
)

const testCSV = "time,temp,city\n0,10,Osaka\n1,12,Kyoto\n2,,Nara\n"

// isolate points the XDG directories at a temp dir and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Cleanup(observability.Reset)
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns what it printed to
// the CLI's output writer.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", appName), dir)

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = cacheDir()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, filepath.Join(dir, "w.csv"), testCSV)
	img := filepath.Join(dir, "out.png")
	code := filepath.Join(dir, "out.py")
	export := filepath.Join(dir, "data.json")

	_, err := execute(t, "render", data,
		"-t", "bar", "-x", "city", "-y", "temp,temp_f",
		"--derive", "temp_f=temp*1.8",
		"--title", "Temps", "--grid",
		"--dpi", "20",
		"-o", img, "--code", code, "--save-data", export)
	require.NoError(t, err)

	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx(), "10in at 20 dpi")

	py, err := os.ReadFile(code)
	require.NoError(t, err)
	assert.Contains(t, string(py), "df['temp_f'] = df['temp'] * 1.8")
	assert.Contains(t, string(py), "ax.set_title('Temps'")

	back, err := pipeline.LoadFile(export)
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "temp", "city", "temp_f"}, back.Names())

	// The file cache landed under XDG_CACHE_HOME.
	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRenderCommandUsesConfig(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, filepath.Join(dir, "w.csv"), testCSV)
	cfg := writeFile(t, filepath.Join(dir, "gp.toml"), "[render]\ndpi = 10\n\n[cache]\nbackend = \"memory\"\n")
	img := filepath.Join(dir, "out.png")

	_, err := execute(t, "--config", cfg, "render", data, "-x", "time", "-y", "temp", "-o", img)
	require.NoError(t, err)

	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
}

func TestRenderCommandErrors(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, filepath.Join(dir, "w.csv"), testCSV)
	out := filepath.Join(dir, "out.png")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown column", []string{"render", data, "-x", "time", "-y", "wind", "-o", out, "--no-cache"}, errors.ErrCodeInvalidColumn},
		{"missing file", []string{"render", filepath.Join(dir, "nope.csv"), "-o", out}, errors.ErrCodeFileNotFound},
		{"text in box plot", []string{"render", data, "-t", "box", "-y", "city", "-o", out, "--no-cache"}, errors.ErrCodeRenderNonNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}

	_, err := execute(t, "render", data, "--dpi", "0", "-o", out)
	assert.ErrorContains(t, err, "--dpi must be positive")

	_, err = execute(t, "--config", filepath.Join(dir, "missing.toml"), "render", data)
	assert.ErrorContains(t, err, "read config")
}

func TestParseRequest(t *testing.T) {
	yamlDoc := `
chart_type: composite
x_axis: time
y_axis_list: [temp, rain]
series_kinds: {rain: bar}
axes: {rain: 1}
axis_labels:
  "1": {name: Rain, unit: mm}
fig_width: 8
major_grid: true
`
	req, err := parseRequest([]byte(yamlDoc), ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "composite", req.ChartType)
	assert.Equal(t, `["temp","rain"]`, req.YAxisList)
	assert.Equal(t, `{"rain":"bar"}`, req.SeriesKinds)
	assert.Equal(t, `{"rain":1}`, req.Axes)
	assert.JSONEq(t, `{"1":{"name":"Rain","unit":"mm"}}`, req.AxisLabels)
	require.NotNil(t, req.FigWidth)
	assert.Equal(t, 8.0, *req.FigWidth)
	require.NotNil(t, req.MajorGrid)
	assert.True(t, *req.MajorGrid)

	// JSON text fields pass through unchanged.
	req, err = parseRequest([]byte(`{"chart_type":"line","y_axis_list":"[\"a\"]"}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, req.YAxisList)

	_, err = parseRequest([]byte("chart_type: line\ncolour: red\n"), ".yml")
	assert.Error(t, err, "unknown fields are rejected")

	_, err = parseRequest([]byte("{"), ".json")
	assert.Error(t, err)
}

func TestRequestFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "req.yaml"), "chart_type: scatter\nx_axis: time\ny_axis_list: [temp]\ntitle: From file\n")

	var f requestFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"-r", file, "--title", "From flag", "--y-min", "0", "--axis", "rain=1"}))

	req, err := f.request(cmd)
	require.NoError(t, err)
	assert.Equal(t, "scatter", req.ChartType)
	assert.Equal(t, "time", req.XAxis)
	assert.Equal(t, `["temp"]`, req.YAxisList)
	assert.Equal(t, "From flag", req.Title)
	require.NotNil(t, req.YMin)
	assert.Equal(t, 0.0, *req.YMin)
	assert.Nil(t, req.YMax)
	assert.Nil(t, req.MajorGrid, "unset flags leave the field absent")
	assert.Equal(t, `{"rain":1}`, req.Axes)
}

func TestRequestFlagsDefaultType(t *testing.T) {
	var f requestFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(nil))
	req, err := f.request(cmd)
	require.NoError(t, err)
	assert.Equal(t, "line", req.ChartType)
}

func TestApplyDerive(t *testing.T) {
	base, err := dataset.ParseCSV([]byte(testCSV), "w.csv")
	require.NoError(t, err)

	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{expr: "temp_f=temp*1.8", want: "temp_f"},
		{expr: "temp * 2", want: "temp_calc"},
		{expr: "temp", wantErr: true},
		{expr: "x=temp*abc", wantErr: true},
		{expr: "x=city*2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ds, err := applyDerive(base, tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, ds.Has(tt.want))
			assert.False(t, base.Has(tt.want), "input dataset is untouched")
		})
	}
}

func TestWritePreview(t *testing.T) {
	ds, err := dataset.ParseCSV([]byte(testCSV), "w.csv")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writePreview(&buf, ds, 2, 2))
	out := buf.String()
	assert.Contains(t, out, "w.csv")
	assert.Contains(t, out, "Nara")
	assert.NotContains(t, out, "Osaka")
	assert.Contains(t, out, "page 2/2")
	assert.Contains(t, out, "2 numeric")

	assert.True(t, errors.Is(writePreview(&buf, ds, 2, 3), errors.ErrCodeInvalidPage))
}

func TestPreviewCommand(t *testing.T) {
	dir := isolate(t)
	data := writeFile(t, filepath.Join(dir, "w.csv"), testCSV)

	out, err := execute(t, "preview", data, "--size", "1", "--page", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Nara")
	assert.Contains(t, out, "page 3/3")
}

func TestPreviewModel(t *testing.T) {
	var b strings.Builder
	b.WriteString("n,label\n")
	for i := 0; i < 25; i++ {
		b.WriteString(dataset.FormatNumber(float64(i)) + ",row\n")
	}
	ds, err := dataset.ParseCSV([]byte(b.String()), "rows.csv")
	require.NoError(t, err)

	m, err := NewPreviewModel(ds, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Page.TotalPages)

	press := func(m PreviewModel, msg tea.Msg) PreviewModel {
		next, _ := m.Update(msg)
		return next.(PreviewModel)
	}
	key := func(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.Page.Number)
	m = press(m, key('G'))
	assert.Equal(t, 3, m.Page.Number)
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, m.Page.Number, "stays on the last page")
	m = press(m, key('g'))
	assert.Equal(t, 1, m.Page.Number)
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, m.Page.Number, "stays on the first page")

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.Column)
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.Column, "wraps around")

	m = press(m, tea.WindowSizeMsg{Width: 80, Height: 15})
	assert.Equal(t, 5, m.PageSize)
	assert.Equal(t, 5, m.Page.TotalPages)

	view := m.View()
	assert.Contains(t, view, "rows.csv")
	assert.Contains(t, view, "n: numeric, 0 missing, range 0 to 24")

	_, cmd := m.Update(key('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSampleCommand(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "sample", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, string(dataset.SampleCSV()), out)

	path := filepath.Join(dir, "grades.csv")
	_, err = execute(t, "sample", "-o", path)
	require.NoError(t, err)
	ds, err := pipeline.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, dataset.Sample().Names(), ds.Names())
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache", appName)+"\n", out)

	data := writeFile(t, filepath.Join(dir, "w.csv"), testCSV)
	_, err = execute(t, "render", data, "-x", "time", "-y", "temp", "-o", filepath.Join(dir, "o.png"), "--dpi", "10")
	require.NoError(t, err)

	_, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDisplayURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", displayURL(":8080"))
	assert.Equal(t, "http://127.0.0.1:9000", displayURL("127.0.0.1:9000"))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "2.0 KB", formatBytes(2048))
	assert.Equal(t, "1.5 MB", formatBytes(3<<19))
}
