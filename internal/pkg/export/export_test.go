package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sampleRow struct {
	Code   string `csv:"employee_code"`
	Name   string `csv:"name"`
	Amount string `csv:"amount"`
}

var sample = []sampleRow{
	{Code: "EMP00001", Name: "Nimal Perera", Amount: "92000.00"},
	{Code: "EMP00002", Name: "Kamala, Silva", Amount: "57040.00"},
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, ParseFormat("CSV"))
	assert.Equal(t, FormatXLSX, ParseFormat(""))
	assert.Equal(t, FormatXLSX, ParseFormat("pdf"))
	assert.Equal(t, "payroll.csv", FormatCSV.Filename("payroll"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "", sample))

	assert.Equal(t, "employee_code,name,amount\nEMP00001,Nimal Perera,92000.00\nEMP00002,\"Kamala, Silva\",57040.00\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, "Payroll", sample))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Payroll")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"employee_code", "name", "amount"}, rows[0])
	assert.Equal(t, "Kamala, Silva", rows[2][1])
}
