package reportfile

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoad_UTF8WithBOM(t *testing.T) {
	p := writeFile(t, "bom.csv", append([]byte{0xEF, 0xBB, 0xBF}, []byte("SKU, Qty \n1001,3\n")...))

	tbl, err := NewLoader(testLogger()).Load(p)
	require.NoError(t, err)
	assert.Equal(t, "utf-8-sig", tbl.Encoding)
	assert.Equal(t, []string{"SKU", "Qty"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "1001", tbl.Rows[0].Get("SKU"))
	assert.Equal(t, int64(3), tbl.Rows[0].Int("Qty"))
	assert.Equal(t, 2, tbl.Rows[0].LineNumber)
}

func TestLoad_Latin1Fallback(t *testing.T) {
	p := writeFile(t, "latin.csv", []byte("SKU,Name\n1001,Caf\xe9\n"))

	tbl, err := NewLoader(testLogger()).Load(p)
	require.NoError(t, err)
	assert.Equal(t, "latin-1", tbl.Encoding)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Café", tbl.Rows[0].Get("Name"))
}

func TestLoad_SkipRowsAndDelimiter(t *testing.T) {
	p := writeFile(t, "walmart.csv", []byte("Report generated\nStore: 1\nItem ID;SKU;Units Sold\n9;1001;4\n"))

	tbl, err := NewLoader(testLogger()).Load(p, WithSkipRows(2), WithDelimiter(';'))
	require.NoError(t, err)
	assert.Equal(t, []string{"Item ID", "SKU", "Units Sold"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "4", tbl.Rows[0].Get("Units Sold"))
}

func TestLoad_PadsShortRowsAndDropsBlankRows(t *testing.T) {
	p := writeFile(t, "short.csv", []byte("SKU,Qty,Inbound\n1001,2\n,,\n2001,1,5\n"))

	tbl, err := NewLoader(testLogger()).Load(p)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "", tbl.Rows[0].Get("Inbound"))
	assert.Equal(t, int64(0), tbl.Rows[0].Int("Inbound"))
	assert.Equal(t, "2001", tbl.Rows[1].Get("SKU"))
}

func TestLoad_Errors(t *testing.T) {
	loader := NewLoader(testLogger())

	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = loader.Load(writeFile(t, "empty.csv", nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = loader.Load(writeFile(t, "blank.csv", []byte(" , \n1,2\n")))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestTable_RequireColumns(t *testing.T) {
	tbl := &Table{Path: "/tmp/x.csv", Headers: []string{"SKU", "Qty"}}
	assert.NoError(t, tbl.RequireColumns("SKU", "Qty"))

	err := tbl.RequireColumns("SKU", "Revenue", "Channel")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Revenue, Channel")
}
