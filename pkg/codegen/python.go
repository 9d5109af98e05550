package codegen

import (
	"fmt"
	"strings"

	"github.com/matzehuels/graphypad/pkg/chart"
	"github.com/matzehuels/graphypad/pkg/dataset"
)

// DefaultSourceName is used in read_csv when the plan has no source name.
const DefaultSourceName = "data.csv"

// Python returns a self-contained matplotlib program that draws the same
// chart as plan. The output is deterministic: equal plans give equal text.
func Python(plan *chart.Plan) string {
	w := &writer{plan: plan}
	w.header()
	w.load()
	w.figure()
	for _, op := range plan.Ops {
		w.op(op)
	}
	w.cosmetics()
	w.legend()
	w.line("")
	w.line("plt.tight_layout()")
	w.line("plt.show()")
	return w.b.String()
}

// =============================================================================
// Writer
// =============================================================================

type writer struct {
	b    strings.Builder
	plan *chart.Plan
	// handle is the variable holding a box or violin result, used by the legend.
	handle string
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// xExpr is the expression for the X values of series plots.
func (w *writer) xExpr() string {
	if w.plan.UsesSlots() {
		return "x"
	}
	return column(w.plan.XColumn)
}

func (w *writer) usesLocator() bool {
	for _, iv := range []chart.TickInterval{w.plan.XInterval, w.plan.YInterval} {
		if iv.Major > 0 || iv.Minor > 0 {
			return true
		}
	}
	return false
}

// =============================================================================
// Sections
// =============================================================================

func (w *writer) header() {
	w.line("import pandas as pd")
	w.line("import matplotlib.pyplot as plt")
	if w.plan.UsesSlots() {
		w.line("import numpy as np")
	}
	if w.usesLocator() {
		w.line("from matplotlib.ticker import MultipleLocator")
	}
	w.line("")
}

func (w *writer) load() {
	src := w.plan.Source
	name := src.Name
	if name == "" {
		name = DefaultSourceName
	}
	switch {
	case src.Format == dataset.FormatXLSX:
		w.line("df = pd.read_excel(%s)", pyStr(name))
	case src.Encoding == dataset.EncodingShiftJIS:
		w.line("df = pd.read_csv(%s, encoding='shift_jis')", pyStr(name))
	default:
		w.line("df = pd.read_csv(%s)", pyStr(name))
	}
	for _, d := range src.Derivations {
		w.line("%s = %s * %s", column(d.Name), column(d.Source), pyFloat(d.Factor))
	}
	w.line("")
}

func (w *writer) figure() {
	f := w.plan.Figure
	w.line("fig, ax = plt.subplots(figsize=(%s, %s))", pyFloat(f.Width), pyFloat(f.Height))
	for _, a := range w.plan.Axes {
		if !a.Twin() {
			continue
		}
		w.line("%s = ax.twinx()", a.Var())
		if a.Offset > 0 {
			w.line("%s.spines['right'].set_position(('axes', %s))", a.Var(), pyFloat(1+a.Offset))
		}
	}
	if w.plan.UsesSlots() {
		w.line("x = np.arange(len(%s))", column(w.plan.XColumn))
	}
	w.line("")
}

func (w *writer) axisVar(s chart.Series) string {
	if a, ok := w.plan.Axis(s.Axis); ok {
		return a.Var()
	}
	return "ax"
}

func (w *writer) op(op chart.Op) {
	switch o := op.(type) {
	case chart.LineOp:
		w.line("%s.plot(%s, %s, marker='o', linewidth=%s, markersize=%s, color=%s, label=%s)",
			w.axisVar(o.Series), w.xExpr(), column(o.Column),
			pyFloat(o.LineWidth), pyFloat(o.MarkerSize), colorName(o.Color), pyStr(o.Column))
	case chart.ScatterOp:
		w.line("%s.scatter(%s, %s, s=%s, alpha=%s, color=%s, label=%s)",
			w.axisVar(o.Series), w.xExpr(), column(o.Column),
			pyFloat(o.Size), pyFloat(o.Alpha), colorName(o.Color), pyStr(o.Column))
	case chart.BarOp:
		w.line("%s.bar(%s, %s, width=%s, color=%s, label=%s)",
			w.axisVar(o.Series), shifted(w.xExpr(), o.Offset), column(o.Column),
			pyFloat(o.Width), colorName(o.Color), pyStr(o.Column))
	case chart.HistogramOp:
		if len(o.Columns) == 1 {
			w.line("ax.hist(%s.dropna(), bins=%d, alpha=%s, label=%s)",
				column(o.Columns[0]), o.Bins, pyFloat(o.Alpha), pyStr(o.Columns[0]))
			return
		}
		w.line("columns = %s", pyStrList(o.Columns))
		w.line("ax.hist([df[c].dropna() for c in columns], bins=%d, alpha=%s, label=columns)",
			o.Bins, pyFloat(o.Alpha))
	case chart.PieOp:
		data := "df"
		if o.Dropped > 0 {
			data = "data"
			w.line("data = df.dropna(subset=[%s])", pyStr(o.Column))
		}
		w.line("ax.pie(%s[%s], labels=%s[%s], autopct=%s, startangle=%s, counterclock=%s)",
			data, pyStr(o.Column), data, pyStr(o.LabelColumn),
			pyStr(o.Format), pyInt(o.StartAngle), pyBool(!o.Clockwise))
	case chart.BoxOp:
		w.handle = "bp"
		w.line("columns = %s", pyStrList(o.Columns))
		w.line("bp = ax.boxplot([df[c].dropna() for c in columns], positions=%s, widths=%s, patch_artist=True)",
			pyIntList(o.Positions), pyFloat(o.Width))
		w.line("for i, patch in enumerate(bp['boxes']):")
		w.line("    patch.set_facecolor(f'C{i %% 10}')")
	case chart.ViolinOp:
		w.handle = "vp"
		w.line("columns = %s", pyStrList(o.Columns))
		w.line("vp = ax.violinplot([df[c].dropna() for c in columns], positions=%s, widths=%s, showmeans=True)",
			pyIntList(o.Positions), pyFloat(o.Width))
		w.line("for i, body in enumerate(vp['bodies']):")
		w.line("    body.set_facecolor(f'C{i %% 10}')")
	}
}

func (w *writer) cosmetics() {
	p := w.plan
	w.line("")

	if len(p.XTicks) > 0 {
		if p.UsesSlots() {
			w.line("ax.set_xticks(x)")
			w.line("ax.set_xticklabels(%s)", column(p.XColumn))
		} else {
			pos := make([]float64, len(p.XTicks))
			labels := make([]string, len(p.XTicks))
			for i, t := range p.XTicks {
				pos[i], labels[i] = t.Value, t.Label
			}
			w.line("ax.set_xticks(%s)", pyIntList(pos))
			w.line("ax.set_xticklabels(%s)", pyStrList(labels))
		}
	}

	if p.Title != "" {
		w.line("ax.set_title(%s, fontsize=%s)", pyStr(p.Title), pyFloat(p.Fonts.Title))
	}
	if p.Type == chart.Pie {
		return
	}
	if p.XLabel != "" {
		w.line("ax.set_xlabel(%s, fontsize=%s)", pyStr(p.XLabel), pyFloat(p.Fonts.Label))
	}
	for _, a := range p.Axes {
		if a.Label != "" {
			w.line("%s.set_ylabel(%s, fontsize=%s)", a.Var(), pyStr(a.Label), pyFloat(p.Fonts.Label))
		}
	}
	for _, a := range p.Axes {
		w.line("%s.tick_params(which='both', direction=%s, labelsize=%s)",
			a.Var(), pyStr(string(p.TickDirection)), pyFloat(p.Fonts.Tick))
		if p.MinorTicks {
			w.line("%s.minorticks_on()", a.Var())
		}
	}

	locator := func(axis, which string, step float64) {
		if step > 0 {
			w.line("ax.%s.set_%s_locator(MultipleLocator(%s))", axis, which, pyFloat(step))
		}
	}
	locator("xaxis", "major", p.XInterval.Major)
	locator("xaxis", "minor", p.XInterval.Minor)
	locator("yaxis", "major", p.YInterval.Major)
	locator("yaxis", "minor", p.YInterval.Minor)

	if p.Grid.Major {
		w.line("ax.grid(True, which='major', linestyle='--', alpha=0.3)")
	}
	if p.Grid.Minor {
		w.line("ax.grid(True, which='minor', linestyle=':', alpha=0.15)")
	}

	if args := limitArgs(p.XRange, "left", "right"); args != "" {
		w.line("ax.set_xlim(%s)", args)
	}
	if args := limitArgs(p.YRange, "bottom", "top"); args != "" {
		w.line("ax.set_ylim(%s)", args)
	}

	switch p.Aspect.Mode {
	case chart.AspectEqual:
		w.line("ax.set_aspect('equal', adjustable='box')")
	case chart.AspectRatio:
		w.line("ax.set_aspect(%s, adjustable='box')", pyFloat(p.Aspect.Ratio))
	}
}

func (w *writer) legend() {
	p := w.plan
	if !p.Legend {
		return
	}
	if w.handle != "" {
		w.line("ax.legend(%s[%s], columns, fontsize=%s)", w.handle, pyStr(legendKey(w.handle)), pyFloat(p.Fonts.Tick))
		return
	}
	if len(p.Axes) <= 1 {
		w.line("ax.legend(fontsize=%s)", pyFloat(p.Fonts.Tick))
		return
	}
	vars := make([]string, len(p.Axes))
	for i, a := range p.Axes {
		vars[i] = a.Var()
	}
	w.line("handles, labels = [], []")
	w.line("for a in (%s):", strings.Join(vars, ", "))
	w.line("    h, l = a.get_legend_handles_labels()")
	w.line("    handles += h")
	w.line("    labels += l")
	w.line("ax.legend(handles, labels, fontsize=%s)", pyFloat(p.Fonts.Tick))
}

func legendKey(handle string) string {
	if handle == "vp" {
		return "bodies"
	}
	return "boxes"
}

func limitArgs(r chart.Range, lo, hi string) string {
	var args []string
	if r.Min != nil {
		args = append(args, lo+"="+pyFloat(*r.Min))
	}
	if r.Max != nil {
		args = append(args, hi+"="+pyFloat(*r.Max))
	}
	return strings.Join(args, ", ")
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
