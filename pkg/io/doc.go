// Package io provides JSON import and export for datasets.
//
// # Overview
//
// Parsed uploads are stored and exchanged as JSON so that they can be kept
// in any cache backend and re-opened without decoding the original file
// again. The format is also what `graphypad preview --json` prints.
//
// # JSON Format
//
//	{
//	  "name": "grades.csv",
//	  "format": "csv",
//	  "encoding": "utf-8",
//	  "columns": [
//	    {"name": "time", "values": [0, 1, 2]},
//	    {"name": "city", "values": ["Osaka", null, "Kyoto"]}
//	  ],
//	  "derivations": [
//	    {"name": "time_calc", "source": "time", "factor": 2}
//	  ]
//	}
//
// Numbers are JSON numbers, text cells are strings and missing cells are
// null. Infinite values are written as the strings "+Inf" and "-Inf" and
// parse back as numbers.
//
// # Round-trip
//
// [WriteJSON] followed by [ReadJSON] yields a dataset with the same names,
// cell kinds and numeric values. The source text of numbers (for example
// "5.0") is not preserved.
package io
