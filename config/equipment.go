package config

import (
	"github.com/shimmeringbee/panel/equipment"
)

type EquipmentConfig struct {
	GatewayStatusTopic string

	// StaleAfter is in milliseconds, zero keeps equipment reachable indefinitely.
	StaleAfter int

	Equipment []EquipmentEntry
}

type EquipmentEntry struct {
	Identifier   string
	Name         string
	CommandTopic string
	Kind         equipment.Kind
}

func (c EquipmentConfig) List() []equipment.Equipment {
	list := make([]equipment.Equipment, 0, len(c.Equipment))

	for _, e := range c.Equipment {
		list = append(list, equipment.Equipment{
			Identifier:   e.Identifier,
			Name:         e.Name,
			CommandTopic: e.CommandTopic,
			Kind:         e.Kind,
		})
	}

	return list
}
