package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["name", "domain"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "domain": {"type": "string", "minLength": 3}
    }
  }
}`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0644))
	return path
}

func TestValidateDocument_Valid(t *testing.T) {
	path := writeSchema(t)
	doc := []byte(`[{"name": "Paytm", "domain": "paytm.com"}]`)
	assert.NoError(t, ValidateDocument(path, doc))
}

func TestValidateDocument_Invalid(t *testing.T) {
	path := writeSchema(t)
	doc := []byte(`[{"name": "Paytm"}]`)

	err := ValidateDocument(path, doc)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
	assert.Contains(t, err.Error(), "domain")
}

func TestValidateDocument_EmptyArray(t *testing.T) {
	path := writeSchema(t)
	assert.Error(t, ValidateDocument(path, []byte(`[]`)))
}

func TestResolveSchemaPath_NotFound(t *testing.T) {
	assert.Empty(t, ResolveSchemaPath("schemas/does-not-exist.schema.json"))
}

func TestResolveSchemaPath_FindsRepoSchema(t *testing.T) {
	// The real companies schema lives two levels up from this package.
	path := ResolveSchemaPath("schemas/companies.schema.json")
	require.NotEmpty(t, path)
	assert.FileExists(t, path)
}
