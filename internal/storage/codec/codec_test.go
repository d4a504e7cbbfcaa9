package codec

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func nameAgeColumns(t *testing.T) schema.Columns {
	t.Helper()
	cols, err := schema.NewColumns(
		schema.Column{Name: schema.MustIdentifier("name"), Type: schema.ColumnTypeText, PrimaryKey: true},
		schema.Column{Name: schema.MustIdentifier("age"), Type: schema.ColumnTypeInteger},
	)
	assert.NilError(t, err)
	return cols
}

func studentTable(t *testing.T, records ...data.Record) *schema.Table {
	t.Helper()
	cols, err := schema.NewColumns(
		schema.Column{Name: schema.MustIdentifier("name"), Type: schema.ColumnTypeText, PrimaryKey: true},
		schema.Column{Name: schema.MustIdentifier("age"), Type: schema.ColumnTypeInteger},
		schema.Column{Name: schema.MustIdentifier("is_student"), Type: schema.ColumnTypeBoolean},
	)
	assert.NilError(t, err)
	return schema.NewTable(schema.MustIdentifier("students"), cols, records)
}

func assertFormatError(t *testing.T, err error, line int) {
	t.Helper()
	var fe *errors.FormatError
	assert.Assert(t, stderrors.As(err, &fe), "expected FormatError, got %v", err)
	if line > 0 {
		assert.Equal(t, fe.Line, line, "error: %v", err)
	}
}

// =============================================================================
// ENCODE
// =============================================================================

func TestEncodeEmptyTable(t *testing.T) {
	tbl := schema.NewTable(schema.MustIdentifier("test"), nameAgeColumns(t), nil)

	got, err := Encode(tbl)
	assert.NilError(t, err)
	assert.Equal(t, got, "[test]\n[name:STRING:P|age:INTEGER:N]\n")
}

func TestEncodeRecords(t *testing.T) {
	tbl := studentTable(t,
		data.NewRecord(data.Text("Alex Smith"), data.Int(33), data.Bool(false)),
		data.NewRecord(data.Text("Bob"), data.Int(0), data.Bool(true)),
	)

	got, err := Encode(tbl)
	assert.NilError(t, err)
	want := "[students]\n" +
		"[name:STRING:P|age:INTEGER:N|is_student:BOOLEAN:N]\n" +
		"Alex?Smith|33|FALSE\n" +
		"Bob|0|TRUE\n"
	assert.Equal(t, got, want)
}

func TestEncodePropertyRejectsUnstorableValues(t *testing.T) {
	tests := []struct {
		name string
		prop data.Property
	}{
		{"negative integer", data.Int(-5)},
		{"empty text", data.Text("")},
		{"only spaces", data.Text("   ")},
		{"separator", data.Text("a|b")},
		{"sentinel", data.Text("why?")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeProperty(tt.prop)
			assertFormatError(t, err, 0)
		})
	}
}

// =============================================================================
// DECODE
// =============================================================================

func TestDecodeRestoresSpaces(t *testing.T) {
	tbl, err := Decode("[test]\n[name:STRING:P|age:INTEGER:N]\nJOHN?SMITH|21\n")
	assert.NilError(t, err)

	assert.Equal(t, tbl.Name.String(), "test")
	assert.Assert(t, tbl.Columns.Equal(nameAgeColumns(t)))
	assert.Equal(t, len(tbl.Records), 1)
	assert.Assert(t, tbl.Records[0].Equal(data.NewRecord(data.Text("JOHN SMITH"), data.Int(21))))
}

func TestDecodeIgnoresBlankLines(t *testing.T) {
	tbl, err := Decode("\n[test]\n\n[name:STRING:P|age:INTEGER:N]\n\nBOB|44\n\n   \n")
	assert.NilError(t, err)
	assert.Equal(t, len(tbl.Records), 1)
}

func TestDecodeWithoutTrailingNewline(t *testing.T) {
	tbl, err := Decode("[test]\n[name:STRING:P|age:INTEGER:N]\nJOHN?SMITH|21\nUNCLE?BOB|44")
	assert.NilError(t, err)
	assert.Equal(t, len(tbl.Records), 2)
	assert.Assert(t, tbl.Records[1].Equal(data.NewRecord(data.Text("UNCLE BOB"), data.Int(44))))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"empty", "", 1},
		{"title only", "[test]\n", 2},
		{"title without brackets", "test\n[name:STRING:P]\n", 1},
		{"header missing bracket", "[test]\n[name:STRING:P\n", 2},
		{"header with two fields", "[test]\n[name:STRING]\n", 2},
		{"unknown type", "[test]\n[name:TEXT:P]\n", 2},
		{"bad primary key marker", "[test]\n[name:STRING:X]\n", 2},
		{"no primary key", "[test]\n[name:STRING:N]\n", 2},
		{"two primary keys", "[test]\n[name:STRING:P|age:INTEGER:P]\n", 2},
		{"bad column name", "[test]\n[first name:STRING:P]\n", 2},
		{"too few fields", "[test]\n[name:STRING:P|age:INTEGER:N]\nBOB\n", 3},
		{"too many fields", "[test]\n[name:STRING:P|age:INTEGER:N]\nBOB|1|2\n", 3},
		{"bad integer", "[test]\n[name:STRING:P|age:INTEGER:N]\nBOB|-1\n", 3},
		{"all sentinel text", "[test]\n[name:STRING:P|age:INTEGER:N]\nBOB|1\n???|2\n", 4},
		{"bad boolean", "[test]\n[name:STRING:P|ok:BOOLEAN:N]\nBOB|true\n", 3},
		{"integer overflow", "[test]\n[name:STRING:P|age:INTEGER:N]\nBOB|99999999999999999999\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.content)
			assertFormatError(t, err, tt.line)
			assert.Equal(t, errors.KindOf(err), errors.KindFormat)
		})
	}
}

func TestDecodeHeader(t *testing.T) {
	name, cols, err := DecodeHeader("[test]\n[name:STRING:P|age:INTEGER:N]\nBOB|not-an-int\n")
	assert.NilError(t, err)
	assert.Equal(t, name.String(), "test")
	assert.Assert(t, cols.Equal(nameAgeColumns(t)))
}

func TestInBrackets(t *testing.T) {
	got, err := InBrackets("[a]b]")
	assert.NilError(t, err)
	assert.Equal(t, got, "a]b")

	_, err = InBrackets("[")
	assertFormatError(t, err, 0)
	_, err = InBrackets("x[a]")
	assertFormatError(t, err, 0)
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestRoundTrip(t *testing.T) {
	tables := []*schema.Table{
		studentTable(t),
		studentTable(t,
			data.NewRecord(data.Text("Alex"), data.Int(33), data.Bool(false)),
			data.NewRecord(data.Text("Uncle Bob the  Second"), data.Int(9223372036854775807), data.Bool(true)),
			data.NewRecord(data.Text("snake_case-name"), data.Int(0), data.Bool(false)),
			data.NewRecord(data.Text(" leading"), data.Int(7), data.Bool(true)),
		),
	}

	for _, tbl := range tables {
		encoded, err := Encode(tbl)
		assert.NilError(t, err)

		decoded, err := Decode(encoded)
		assert.NilError(t, err)

		assert.Assert(t, decoded.Equal(tbl), cmp.Diff(tbl.Records, decoded.Records))
	}
}
