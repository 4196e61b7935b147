package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/shimmeringbee/panel/config"
	"github.com/shimmeringbee/panel/equipment"
	"github.com/shimmeringbee/panel/state"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const TransportConfigurationFile = "transport.json"
const EquipmentConfigurationFile = "equipment.json"

// loadConfigurationDirectory parses every .json file in dir, newCfg is given the file name without
// its extension.
func loadConfigurationDirectory[T any](dir string, kind string, newCfg func(name string) T) ([]T, error) {
	if err := os.MkdirAll(dir, DefaultDirectoryPermissions); err != nil {
		return nil, fmt.Errorf("failed to ensure %s configuration directory exists: %w", kind, err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory listing for %s configurations: %w", kind, err)
	}

	var retCfgs []T

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		cfg := newCfg(strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())))

		if err := loadConfigurationFile(filepath.Join(dir, file.Name()), kind, &cfg); err != nil {
			return nil, err
		}

		retCfgs = append(retCfgs, cfg)
	}

	return retCfgs, nil
}

func loadConfigurationFile(path string, kind string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s configuration file '%s': %w", kind, path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s configuration file '%s': %w", kind, path, err)
	}

	return nil
}

func loadInterfaceConfigurations(dir string) ([]config.InterfaceConfig, error) {
	return loadConfigurationDirectory(dir, "interface", func(name string) config.InterfaceConfig {
		return config.InterfaceConfig{Name: name}
	})
}

func loadLoggingConfigurations(dir string) ([]config.LoggingConfig, error) {
	return loadConfigurationDirectory(dir, "logging", func(name string) config.LoggingConfig {
		return config.LoggingConfig{Name: name}
	})
}

func loadTransportConfiguration(dir string) (config.TransportConfig, error) {
	cfg := config.TransportConfig{}
	err := loadConfigurationFile(filepath.Join(dir, TransportConfigurationFile), "transport", &cfg)
	return cfg, err
}

// loadReconciler builds the equipment registry, a missing equipment file yields an empty registry.
func loadReconciler(dir string) (state.Reconciler, error) {
	cfg := config.EquipmentConfig{}

	err := loadConfigurationFile(filepath.Join(dir, EquipmentConfigurationFile), "equipment", &cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return state.Reconciler{}, err
	}

	registry, err := equipment.NewRegistry(cfg.List())
	if err != nil {
		return state.Reconciler{}, fmt.Errorf("invalid equipment configuration: %w", err)
	}

	if len(cfg.GatewayStatusTopic) == 0 {
		cfg.GatewayStatusTopic = state.DefaultGatewayStatusTopic
	}

	return state.Reconciler{
		Registry:           registry,
		GatewayStatusTopic: cfg.GatewayStatusTopic,
		StaleAfter:         time.Duration(cfg.StaleAfter) * time.Millisecond,
	}, nil
}
