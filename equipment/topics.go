package equipment

type EquipmentTopics struct {
	Identifier   string
	CommandTopic string
	StatusTopic  string
}

type Topics struct {
	GatewayStatusTopic string
	PerEquipment       []EquipmentTopics
}

// Subscriptions lists every topic that must be subscribed after each connect, gateway status first.
func (t Topics) Subscriptions() []string {
	subs := make([]string, 0, len(t.PerEquipment)+1)
	subs = append(subs, t.GatewayStatusTopic)

	for _, e := range t.PerEquipment {
		subs = append(subs, e.StatusTopic)
	}

	return subs
}

// DeriveTopics maps an equipment list to the topics used to talk to it. It holds no state.
func DeriveTopics(gatewayStatusTopic string, list []Equipment) Topics {
	t := Topics{
		GatewayStatusTopic: gatewayStatusTopic,
		PerEquipment:       make([]EquipmentTopics, 0, len(list)),
	}

	for _, e := range list {
		t.PerEquipment = append(t.PerEquipment, EquipmentTopics{
			Identifier:   e.Identifier,
			CommandTopic: e.CommandTopic,
			StatusTopic:  e.StatusTopic(),
		})
	}

	return t
}

func (r *Registry) Topics(gatewayStatusTopic string) Topics {
	return DeriveTopics(gatewayStatusTopic, r.list)
}
