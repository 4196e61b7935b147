package main

import (
	"github.com/shimmeringbee/panel/config"
	"github.com/shimmeringbee/panel/equipment"
	"github.com/shimmeringbee/panel/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func Test_loadInterfaceConfigurations(t *testing.T) {
	t.Run("loads every json file in the directory named after the file", func(t *testing.T) {
		dir := t.TempDir()

		writeFile(t, dir, "one.json", `{"Type":"http","Config":{"Port":3000,"EnabledAPIs":["v1"]}}`)
		writeFile(t, dir, "two.json", `{"Type":"http","Config":{"Port":3001,"EnabledAPIs":["metrics"]}}`)
		writeFile(t, dir, "README.md", `not configuration`)

		cfgs, err := loadInterfaceConfigurations(dir)
		require.NoError(t, err)
		require.Len(t, cfgs, 2)

		assert.Equal(t, "one", cfgs[0].Name)
		assert.Equal(t, "two", cfgs[1].Name)

		httpCfg, ok := cfgs[1].Config.(*config.HTTPInterfaceConfig)
		require.True(t, ok)
		assert.Equal(t, 3001, httpCfg.Port)
	})

	t.Run("creates the directory if it is missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "interfaces")

		cfgs, err := loadInterfaceConfigurations(dir)
		assert.NoError(t, err)
		assert.Empty(t, cfgs)

		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})

	t.Run("errors naming the file if it can not be parsed", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.json", `{"Type":"carrier-pigeon","Config":{}}`)

		_, err := loadInterfaceConfigurations(dir)
		assert.ErrorContains(t, err, "broken.json")
	})
}

func Test_loadTransportConfiguration(t *testing.T) {
	t.Run("loads the mqtt transport", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, TransportConfigurationFile, `{"Type":"mqtt","Config":{"Server":"tcp://broker:1883","QOS":1}}`)

		cfg, err := loadTransportConfiguration(dir)
		require.NoError(t, err)

		mqttCfg, ok := cfg.Config.(*config.MQTTTransportConfig)
		require.True(t, ok)
		assert.Equal(t, "tcp://broker:1883", mqttCfg.Server)
		assert.Equal(t, byte(1), mqttCfg.QOS)
	})

	t.Run("errors if the transport file is missing", func(t *testing.T) {
		_, err := loadTransportConfiguration(t.TempDir())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func Test_loadReconciler(t *testing.T) {
	t.Run("builds a registry from the equipment file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, EquipmentConfigurationFile, `{
			"GatewayStatusTopic": "bridge/state",
			"StaleAfter": 30000,
			"Equipment": [
				{"Identifier": "lamp", "Name": "Lamp", "CommandTopic": "zigbee2mqtt/lamp", "Kind": "light"},
				{"Identifier": "kettle", "CommandTopic": "zigbee2mqtt/kettle", "Kind": "plug"}
			]
		}`)

		r, err := loadReconciler(dir)
		require.NoError(t, err)

		assert.Equal(t, "bridge/state", r.GatewayStatusTopic)
		assert.Equal(t, 30*time.Second, r.StaleAfter)
		assert.Equal(t, 2, r.Registry.Len())

		lamp, found := r.Registry.Equipment("lamp")
		assert.True(t, found)
		assert.Equal(t, equipment.KindLight, lamp.Kind)
	})

	t.Run("uses the default gateway topic and an empty registry when the file is missing", func(t *testing.T) {
		r, err := loadReconciler(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, state.DefaultGatewayStatusTopic, r.GatewayStatusTopic)
		assert.Equal(t, 0, r.Registry.Len())
		assert.Equal(t, time.Duration(0), r.StaleAfter)
	})

	t.Run("errors on duplicate identifiers", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, EquipmentConfigurationFile, `{"Equipment": [
			{"Identifier": "lamp", "CommandTopic": "a"},
			{"Identifier": "lamp", "CommandTopic": "b"}
		]}`)

		_, err := loadReconciler(dir)
		assert.ErrorIs(t, err, equipment.DuplicateIdentifier)
	})

	t.Run("errors on invalid json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, EquipmentConfigurationFile, `{`)

		_, err := loadReconciler(dir)
		assert.Error(t, err)
	})
}
