package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xeipuuv/gojsonschema"
)

func TestAllSchemas_ValidJSON(t *testing.T) {
	for name, content := range map[string]string{"verdict": Verdict, "request": Request} {
		t.Run(name, func(t *testing.T) {
			var v map[string]any
			assert.NoError(t, json.Unmarshal([]byte(content), &v))
			assert.Equal(t, "object", v["type"])
		})
	}
}

func TestAllSchemas_Compile(t *testing.T) {
	for name, content := range map[string]string{"verdict": Verdict, "request": Request} {
		_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
		assert.NoError(t, err, name)
	}
}
