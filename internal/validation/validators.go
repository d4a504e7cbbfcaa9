package validation

import (
	"regexp"
	"strings"
)

// Sentinel stands in for a literal space inside a stored text value.
const Sentinel = '?'

var (
	lexemeRegex     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	integerRegex    = regexp.MustCompile(`^[0-9]+$`)
	storedTextRegex = regexp.MustCompile(`^[A-Za-z0-9?_-]+$`)
	inputTextRegex  = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
	recordLineRegex = regexp.MustCompile(`^(?:[A-Za-z0-9?]+(?:\|[A-Za-z0-9?]+)*)?$`)
	titleRegex      = regexp.MustCompile(`^\[[A-Za-z]+\]$`)
)

// IsLexeme reports whether value can name a table or a column.
func IsLexeme(value string) bool {
	return lexemeRegex.MatchString(value)
}

// IsInteger reports whether value is an unsigned decimal integer literal.
func IsInteger(value string) bool {
	return integerRegex.MatchString(value)
}

// IsStoredText reports whether value is a valid on-disk text literal.
// A literal made only of sentinels is rejected: it would decode to a blank string.
func IsStoredText(value string) bool {
	if strings.Trim(value, string(Sentinel)) == "" {
		return false
	}
	return storedTextRegex.MatchString(value)
}

// IsInputText reports whether a raw text value supplied by a caller may be stored.
// Spaces are allowed, the sentinel is not.
func IsInputText(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	return inputTextRegex.MatchString(value)
}

// IsBoolean reports whether value is TRUE or FALSE.
func IsBoolean(value string) bool {
	return value == "TRUE" || value == "FALSE"
}

// IsRecordLine checks the overall shape of a record line before it is split into fields.
func IsRecordLine(line string) bool {
	return recordLineRegex.MatchString(line)
}

// IsTitle checks the table title line of a stored file.
func IsTitle(line string) bool {
	return titleRegex.MatchString(line)
}

// IsTableName reports whether name can be written as a title line and read back.
func IsTableName(name string) bool {
	return IsTitle("[" + name + "]")
}
