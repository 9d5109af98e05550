// Package codegen prints chart plans as matplotlib programs.
//
// [Python] walks the same [chart.Plan] the renderer draws, so the snippet
// reproduces the returned image: column names, sizes, bar offsets, bin
// counts, twin axes and cosmetic settings all come from the plan. The
// program loads the original file with pandas, replays derived columns and
// ends with plt.show().
//
//	code := codegen.Python(plan)
//
// [chart.Plan]: github.com/matzehuels/graphypad/pkg/chart.Plan
package codegen
