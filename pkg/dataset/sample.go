package dataset

import (
	"bytes"
	"encoding/csv"
)

// SampleFilename is the download name of the sample dataset.
const SampleFilename = "sample_grades.csv"

var sampleHeader = []string{"Subject", "Class A", "Class B", "Student No"}

var sampleRows = [][]string{
	{"Language", "75", "80", "1"},
	{"Math", "82", "70", "2"},
	{"English", "90", "85", "3"},
	{"Science", "68", "92", "4"},
	{"Social Studies", "72", "65", "5"},
}

// SampleCSV returns the sample dataset as UTF-8 CSV with a byte order mark,
// which spreadsheet applications need to detect the encoding.
func SampleCSV() []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	_ = w.Write(sampleHeader)
	_ = w.WriteAll(sampleRows)
	return buf.Bytes()
}

// Sample returns the parsed sample dataset.
func Sample() *Dataset {
	ds, err := ParseCSV(SampleCSV(), SampleFilename)
	if err != nil {
		panic("dataset: invalid sample: " + err.Error())
	}
	return ds
}
