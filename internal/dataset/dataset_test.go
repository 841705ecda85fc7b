package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chronam-essays/internal/record"
)

func TestLinksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "lc_output.csv")
	links := []string{
		"https://www.loc.gov/item/sn1/",
		"https://www.loc.gov/item/sn1/",
		"https://www.loc.gov/item/sn2/",
	}

	require.NoError(t, WriteLinks(path, links))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "lccn\nhttps://www.loc.gov/item/sn1/\nhttps://www.loc.gov/item/sn1/\nhttps://www.loc.gov/item/sn2/\n", string(data))

	got, err := ReadLinks(path)
	require.NoError(t, err)
	assert.Equal(t, links, got)
}

func TestReadLinksFindsColumnByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.csv")
	content := "\ufeffidx,lccn\n0,https://a/\n1,\n2,https://b/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadLinks(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/", "https://b/"}, got)
}

func TestWriteRecordsEmptyKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, WriteRecords(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "created_published,date,dates_of_publication,description,essay,essay_contributor,language,latlong,location,raw_lccn,subjects,title,url\n", string(data))

	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	in := []record.Record{
		record.New(map[string]string{"raw_lccn": "sn1", "essay": "<p>Line one,\nline \"two\"</p>"}),
		record.New(map[string]string{"raw_lccn": "sn2"}),
	}

	require.NoError(t, WriteRecords(path, in))
	out, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Values(), out[0].Values())
	assert.Equal(t, record.Sentinel, out[1].Essay())
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ReadLinks(empty)
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestErrorLogAppendsOncePerURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://old/?fo=json\n"), 0o644))

	errLog, err := OpenErrorLog(path)
	require.NoError(t, err)

	added, err := errLog.Append("https://a/?fo=json")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = errLog.Append("https://a/?fo=json")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = errLog.Append("https://b/?fo=json")
	require.NoError(t, err)
	assert.Equal(t, 2, errLog.Count())
	require.NoError(t, errLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://old/?fo=json\nhttps://a/?fo=json\nhttps://b/?fo=json\n", string(data))
}

func TestWriteAnalyzed(t *testing.T) {
	dir := t.TempDir()
	rows := []record.Analyzed{
		{
			Record:        record.New(map[string]string{"raw_lccn": "sn1", "essay": "Hello world ."}),
			People:        []string{"Benjamin Day"},
			Organizations: []string{"Associated Press"},
		},
	}

	csvPath := filepath.Join(dir, "final.csv")
	require.NoError(t, WriteAnalyzed(csvPath, rows))

	header, data, err := readCSV(csvPath)
	require.NoError(t, err)
	assert.Equal(t, record.AnalyzedFields(), header)
	require.Len(t, data, 1)
	assert.Equal(t, `["Benjamin Day"]`, data[0][len(header)-2])
	assert.Equal(t, `["Associated Press"]`, data[0][len(header)-1])

	xlsxPath := filepath.Join(dir, "final.xlsx")
	require.NoError(t, WriteAnalyzedXLSX(xlsxPath, rows))

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	cell, err := f.GetCellValue(AnalyzedSheet, "J2")
	require.NoError(t, err)
	assert.Equal(t, "sn1", cell)
}
