package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenter/model"
)

func TestRead_Text(t *testing.T) {
	input := `# age income spendingScore frequency
19 15000 39 3

21 15500 81 12
  20   16000 6 1
`
	ds, err := Read(context.Background(), strings.NewReader(input), Options{
		Format: FormatText,
		Schema: DemographicSchema,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 4, ds.Dim())
	assert.Equal(t, model.Vector{21, 15500, 81, 12}, ds.At(1))
}

func TestRead_TextDimensionMismatch(t *testing.T) {
	input := "1 2 3\n4 5 6\n7 8\n"
	_, err := Read(context.Background(), strings.NewReader(input), Options{Format: FormatText})
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)

	var dm *model.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestRead_TextSchemaWidth(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("1 2 3\n"), Options{
		Format: FormatText,
		Schema: PurchaseSchema,
	})
	var dm *model.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 5, dm.Expected)
}

func TestRead_TextRecordsSpanLines(t *testing.T) {
	input := `19 15000
39 3 21
15500 81 12
`
	ds, err := Read(context.Background(), strings.NewReader(input), Options{
		Format: FormatText,
		Schema: DemographicSchema,
	})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, model.Vector{19, 15000, 39, 3}, ds.At(0))
	assert.Equal(t, model.Vector{21, 15500, 81, 12}, ds.At(1))
}

func TestRead_TextTrailingPartialRecord(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("1 2 3 4 5\n6 7\n"), Options{
		Format: FormatText,
		Schema: DemographicSchema,
	})

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line, "reported where the incomplete record starts")

	var dm *model.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 1, dm.Index)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
}

func TestRead_TextBadValue(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("1 2\n3 x\n"), Options{Format: FormatText})

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 2, pe.Column)
	assert.Contains(t, err.Error(), `"x"`)
}

func TestRead_RejectsNonFinite(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("1 NaN\n"), Options{Format: FormatText})
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Read(context.Background(), strings.NewReader("1,+Inf\n"), Options{Format: FormatCSV})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("# nothing\n\n"), Options{Format: FormatText})
	assert.ErrorIs(t, err, model.ErrEmptyDataset)
}

func TestRead_CSVHeaderBySchema(t *testing.T) {
	input := `customer_id,Spending Score,age,income,frequency
1001,39,19,15000,3
1002,81,21,15500,12
`
	ds, err := Read(context.Background(), strings.NewReader(input), Options{
		Format: FormatCSV,
		Schema: DemographicSchema,
	})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, model.Vector{19, 15000, 39, 3}, ds.At(0))
	assert.Equal(t, model.Vector{21, 15500, 81, 12}, ds.At(1))
}

func TestRead_CSVMissingColumn(t *testing.T) {
	input := "age,income\n1,2\n"
	_, err := Read(context.Background(), strings.NewReader(input), Options{
		Format: FormatCSV,
		Schema: DemographicSchema,
	})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestRead_CSVShortRowReordered(t *testing.T) {
	input := "frequency,spendingScore,income,age\n3,39,15000,19\n12,81\n"
	_, err := Read(context.Background(), strings.NewReader(input), Options{
		Format: FormatCSV,
		Schema: DemographicSchema,
	})

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)

	var dm *model.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected, "the widest selected column is needed")
	assert.Equal(t, 2, dm.Actual)
}

func TestRead_CSVNoHeader(t *testing.T) {
	input := "1,2\n3,4\n5,6\n"
	ds, err := Read(context.Background(), strings.NewReader(input), Options{Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, model.Vector{1, 2}, ds.At(0))
}

func TestRead_CSVHeaderModes(t *testing.T) {
	input := "1,2\n3,4\n"

	ds, err := Read(context.Background(), strings.NewReader(input), Options{
		Format: FormatCSV,
		Header: HeaderPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len(), "first numeric row consumed as header")

	_, err = Read(context.Background(), strings.NewReader("a,b\n1,2\n"), Options{
		Format: FormatCSV,
		Header: HeaderAbsent,
	})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
}

func TestRead_CSVSemicolon(t *testing.T) {
	ds, err := Read(context.Background(), strings.NewReader("1.5;2\n3;4\n"), Options{
		Format: FormatCSV,
		Comma:  ';',
	})
	require.NoError(t, err)
	assert.Equal(t, model.Vector{1.5, 2}, ds.At(0))
}

func TestRead_CSVLineNumbers(t *testing.T) {
	input := "a,b\n1,2\n3,oops\n"
	_, err := Read(context.Background(), strings.NewReader(input), Options{Format: FormatCSV})

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, 2, pe.Column)
}

func TestRead_AutoFormatRejected(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("1\n"), Options{})
	assert.Error(t, err)
}

func TestRead_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := strings.Repeat("1 2\n", checkEvery+1)
	_, err := Read(ctx, strings.NewReader(input), Options{Format: FormatText})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("Purchase")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Dim())

	s, err = ParseSchema("")
	require.NoError(t, err)
	assert.True(t, s.IsZero())
	assert.Equal(t, "f2", s.FieldName(2))

	_, err = ParseSchema("bogus")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("exports/customers.CSV.gz"))
	assert.Equal(t, FormatText, DetectFormat("MOCK_DATA.txt"))
	assert.Equal(t, FormatText, DetectFormat("points.zst"))
}
