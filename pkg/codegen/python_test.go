package codegen

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/dataset"
)

func testData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("data.csv",
		&dataset.Column{Name: "time", Values: []dataset.Value{dataset.Num(0), dataset.Num(1), dataset.Num(2)}},
		&dataset.Column{Name: "a", Values: []dataset.Value{dataset.Num(1), dataset.Num(2), dataset.Num(3)}},
		&dataset.Column{Name: "b", Values: []dataset.Value{dataset.Num(3), dataset.NA, dataset.Num(1)}},
		&dataset.Column{Name: "c", Values: []dataset.Value{dataset.Num(5), dataset.Num(6), dataset.Num(7)}},
		&dataset.Column{Name: "city", Values: []dataset.Value{dataset.Str("Osaka"), dataset.Str("Kyoto"), dataset.Str("Nara")}},
	)
	require.NoError(t, err)
	return ds
}

func generate(t *testing.T, req chart.Request) string {
	t.Helper()
	ds := testData(t)
	spec, err := chart.Normalize(req, ds)
	require.NoError(t, err)
	plan, err := chart.BuildPlan(spec, ds)
	require.NoError(t, err)
	return Python(plan)
}

func fp(v float64) *float64 { return &v }

func TestPythonLine(t *testing.T) {
	code := generate(t, chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["a"]`})

	assert.True(t, strings.HasPrefix(code, "import pandas as pd\nimport matplotlib.pyplot as plt\n\n"))
	assert.Contains(t, code, "df = pd.read_csv('data.csv')\n")
	assert.Contains(t, code, "fig, ax = plt.subplots(figsize=(10.0, 6.0))\n")
	assert.Contains(t, code, "ax.plot(df['time'], df['a'], marker='o', linewidth=3.0, markersize=8.0, color='C0', label='a')\n")
	assert.Contains(t, code, "ax.set_xlabel('time', fontsize=18.0)\n")
	assert.Contains(t, code, "ax.set_ylabel('a', fontsize=18.0)\n")
	assert.Contains(t, code, "ax.tick_params(which='both', direction='in', labelsize=14.0)\n")
	assert.Contains(t, code, "ax.grid(True, which='major', linestyle='--', alpha=0.3)\n")
	assert.True(t, strings.HasSuffix(code, "plt.tight_layout()\nplt.show()\n"))

	assert.NotContains(t, code, "numpy")
	assert.NotContains(t, code, "MultipleLocator")
	assert.NotContains(t, code, "legend", "single series has no legend")
	assert.NotContains(t, code, "set_xlim")
}

func TestPythonGroupedBarsOnCategories(t *testing.T) {
	code := generate(t, chart.Request{ChartType: "bar", XAxis: "city", YAxisList: `["a","c"]`})

	assert.Contains(t, code, "import numpy as np\n")
	assert.Contains(t, code, "x = np.arange(len(df['city']))\n")
	assert.Contains(t, code, "ax.bar(x - 0.2, df['a'], width=0.4, color='C0', label='a')\n")
	assert.Contains(t, code, "ax.bar(x + 0.2, df['c'], width=0.4, color='C1', label='c')\n")
	assert.Contains(t, code, "ax.set_xticks(x)\nax.set_xticklabels(df['city'])\n")
	assert.Contains(t, code, "ax.legend(fontsize=14.0)\n")
}

func TestPythonCompositeTwinAxes(t *testing.T) {
	code := generate(t, chart.Request{
		ChartType:   "composite",
		XAxis:       "time",
		YAxisList:   `["a","b","c"]`,
		SeriesKinds: `{"b":"bar","c":"scatter"}`,
		Axes:        `{"b":1,"c":2}`,
	})

	assert.Contains(t, code, "ax1 = ax.twinx()\n")
	assert.Contains(t, code, "ax2 = ax.twinx()\nax2.spines['right'].set_position(('axes', 1.15))\n")
	assert.NotContains(t, code, "ax1.spines")
	assert.Contains(t, code, "ax1.bar(df['time'], df['b'], width=0.8, color='C1', label='b')\n")
	assert.Contains(t, code, "ax2.scatter(df['time'], df['c'], s=80.0, alpha=0.7, color='C2', label='c')\n")
	assert.Contains(t, code, "ax1.set_ylabel('b', fontsize=18.0)\n")
	assert.Contains(t, code, "ax2.tick_params(which='both', direction='in', labelsize=14.0)\n")
	assert.Contains(t, code, "for a in (ax, ax1, ax2):\n")
	assert.Contains(t, code, "ax.legend(handles, labels, fontsize=14.0)\n")

	// Twins are created before anything is drawn on them.
	assert.Less(t, strings.Index(code, "ax2 = ax.twinx()"), strings.Index(code, "ax2.scatter"))
}

func TestPythonHistogram(t *testing.T) {
	code := generate(t, chart.Request{ChartType: "histogram", YAxisList: `["a","b"]`})

	assert.Contains(t, code, "columns = ['a', 'b']\n")
	assert.Contains(t, code, "ax.hist([df[c].dropna() for c in columns], bins=20, alpha=0.7, label=columns)\n")
	assert.Contains(t, code, "ax.legend(fontsize=14.0)\n")

	single := generate(t, chart.Request{ChartType: "histogram", YAxisList: `["b"]`})
	assert.Contains(t, single, "ax.hist(df['b'].dropna(), bins=20, alpha=0.7, label='b')\n")
	assert.Contains(t, single, "ax.legend(", "histograms always carry a legend")
}

func TestPythonPie(t *testing.T) {
	code := generate(t, chart.Request{ChartType: "pie", XAxis: "city", YAxisList: `["a"]`})
	assert.Contains(t, code, "ax.pie(df['a'], labels=df['city'], autopct='%1.1f%%', startangle=90, counterclock=False)\n")
	assert.NotContains(t, code, "dropna")
	assert.NotContains(t, code, "set_xlabel")
	assert.NotContains(t, code, "tick_params")
	assert.NotContains(t, code, "grid")

	dropped := generate(t, chart.Request{ChartType: "pie", XAxis: "city", YAxisList: `["b"]`})
	assert.Contains(t, dropped, "data = df.dropna(subset=['b'])\n")
	assert.Contains(t, dropped, "ax.pie(data['b'], labels=data['city'],")
}

func TestPythonDistributions(t *testing.T) {
	box := generate(t, chart.Request{ChartType: "box", YAxisList: `["a","b"]`})
	assert.Contains(t, box, "bp = ax.boxplot([df[c].dropna() for c in columns], positions=[1, 2], widths=")
	assert.Contains(t, box, "patch_artist=True)\n")
	assert.Contains(t, box, "    patch.set_facecolor(f'C{i % 10}')\n")
	assert.Contains(t, box, "ax.set_xticks([1, 2])\nax.set_xticklabels(['a', 'b'])\n")
	assert.Contains(t, box, "ax.legend(bp['boxes'], columns, fontsize=14.0)\n")
	assert.NotContains(t, box, "ax.grid(")

	violin := generate(t, chart.Request{ChartType: "violin", YAxisList: `["a","b"]`})
	assert.Contains(t, violin, "vp = ax.violinplot([df[c].dropna() for c in columns], positions=[1, 2], widths=0.5, showmeans=True)\n")
	assert.Contains(t, violin, "ax.legend(vp['bodies'], columns, fontsize=14.0)\n")

	one := generate(t, chart.Request{ChartType: "violin", YAxisList: `["a"]`})
	assert.NotContains(t, one, "legend")
}

func TestPythonCosmetics(t *testing.T) {
	code := generate(t, chart.Request{
		ChartType:     "scatter",
		XAxis:         "time",
		YAxisList:     `["a"]`,
		Title:         "It's \"data\"",
		TickDirection: "out",
		MinorGrid:     boolp(true),
		MinorTicks:    boolp(true),
		YMajorTick:    fp(2),
		YMinorTick:    fp(0.5),
		YMin:          fp(0),
		XMax:          fp(10),
		Aspect:        "equal",
	})

	assert.Contains(t, code, "from matplotlib.ticker import MultipleLocator\n")
	assert.Contains(t, code, `ax.set_title('It\'s "data"', fontsize=24.0)`)
	assert.Contains(t, code, "ax.tick_params(which='both', direction='out', labelsize=14.0)\nax.minorticks_on()\n")
	assert.Contains(t, code, "ax.yaxis.set_major_locator(MultipleLocator(2.0))\n")
	assert.Contains(t, code, "ax.yaxis.set_minor_locator(MultipleLocator(0.5))\n")
	assert.Contains(t, code, "ax.grid(True, which='minor', linestyle=':', alpha=0.15)\n")
	assert.Contains(t, code, "ax.set_xlim(right=10.0)\n")
	assert.Contains(t, code, "ax.set_ylim(bottom=0.0)\n")
	assert.Contains(t, code, "ax.set_aspect('equal', adjustable='box')\n")

	ratio := generate(t, chart.Request{ChartType: "line", XAxis: "time", YAxisList: `["a"]`, Aspect: "0.5"})
	assert.Contains(t, ratio, "ax.set_aspect(0.5, adjustable='box')\n")
}

func boolp(v bool) *bool { return &v }

func TestPythonSource(t *testing.T) {
	tests := []struct {
		name   string
		source chart.Source
		want   []string
	}{
		{
			name:   "default name",
			source: chart.Source{Format: dataset.FormatCSV, Encoding: dataset.EncodingUTF8},
			want:   []string{"df = pd.read_csv('data.csv')\n"},
		},
		{
			name:   "shift-jis",
			source: chart.Source{Name: "売上.csv", Format: dataset.FormatCSV, Encoding: dataset.EncodingShiftJIS},
			want:   []string{"df = pd.read_csv('売上.csv', encoding='shift_jis')\n"},
		},
		{
			name:   "excel",
			source: chart.Source{Name: "book.xlsx", Format: dataset.FormatXLSX},
			want:   []string{"df = pd.read_excel('book.xlsx')\n"},
		},
		{
			name: "derived columns",
			source: chart.Source{
				Name:   "d.csv",
				Format: dataset.FormatCSV,
				Derivations: []dataset.Derivation{
					{Name: "km", Source: "m", Factor: 0.001},
					{Name: "m2", Source: "m", Factor: 2},
				},
			},
			want: []string{
				"df = pd.read_csv('d.csv')\ndf['km'] = df['m'] * 0.001\ndf['m2'] = df['m'] * 2.0\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Python(&chart.Plan{Type: chart.Line, Source: tt.source, Figure: chart.Figure{Width: 4, Height: 3}})
			for _, w := range tt.want {
				assert.Contains(t, code, w)
			}
		})
	}
}

func TestPythonDeterministic(t *testing.T) {
	req := chart.Request{ChartType: "composite", XAxis: "time", YAxisList: `["a","b"]`, Axes: `{"b":1}`}
	assert.Equal(t, generate(t, req), generate(t, req))
}

func TestPyStr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `'plain'`},
		{"it's", `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
		{"two\nlines\ttab", `'two\nlines\ttab'`},
		{"bell\a", `'bell\x07'`},
		{"気温", `'気温'`},
	}

	for _, tt := range tests {
		if got := pyStr(tt.in); got != tt.want {
			t.Errorf("pyStr(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPyFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3.0"},
		{-2, "-2.0"},
		{0.2, "0.2"},
		{1.0 / 3, "0.3333333333333333"},
		{1e21, "1e+21"},
		{math.Inf(1), "float('inf')"},
		{math.Inf(-1), "-float('inf')"},
		{math.NaN(), "float('nan')"},
	}

	for _, tt := range tests {
		if got := pyFloat(tt.in); got != tt.want {
			t.Errorf("pyFloat(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestShifted(t *testing.T) {
	assert.Equal(t, "x", shifted("x", 0))
	assert.Equal(t, "x + 0.25", shifted("x", 0.25))
	assert.Equal(t, "x - 0.25", shifted("x", -0.25))
}
