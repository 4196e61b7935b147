package config

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParseInterface(t *testing.T) {
	t.Run("errors if json is invalid", func(t *testing.T) {
		data := []byte(`"`)
		intf := InterfaceConfig{}

		err := json.Unmarshal(data, &intf)
		assert.Error(t, err)
	})

	t.Run("errors if type is unknown", func(t *testing.T) {
		data := []byte(`{"Type":"unknown"}`)
		intf := InterfaceConfig{}

		err := json.Unmarshal(data, &intf)
		assert.Error(t, err)
	})

	t.Run("errors if the Config stanza is missing", func(t *testing.T) {
		data := []byte(`{"Type":"http"}`)
		intf := InterfaceConfig{}

		err := json.Unmarshal(data, &intf)
		assert.Error(t, err)
	})

	t.Run("http interface", func(t *testing.T) {
		t.Run("parses successfully", func(t *testing.T) {
			data := []byte(`{"Type":"http","Config":{"Port":3000,"EnabledAPIs":["v1","metrics"]}}`)
			intf := InterfaceConfig{}

			err := json.Unmarshal(data, &intf)
			assert.NoError(t, err)

			httpInt, ok := intf.Config.(*HTTPInterfaceConfig)
			assert.True(t, ok)

			assert.Equal(t, 3000, httpInt.Port)
			assert.Equal(t, []string{"v1", "metrics"}, httpInt.EnabledAPIs)
		})
	})
}
