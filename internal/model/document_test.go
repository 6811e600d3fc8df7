package model

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The format allow-list is enforced by the database, not only by the
// ingest path; every supported format must appear in the check
// constraint.
func TestDocumentFormatCheckConstraint(t *testing.T) {
	field, ok := reflect.TypeOf(Document{}).FieldByName("Format")
	require.True(t, ok)

	tag := field.Tag.Get("gorm")
	assert.Contains(t, tag, "check:format IN")
	for _, format := range []string{"pdf", "docx", "txt", "md"} {
		assert.Contains(t, tag, "'"+format+"'")
	}
}
