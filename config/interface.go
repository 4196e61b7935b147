package config

type InterfaceConfig struct {
	Name   string `json:"-"`
	Type   string
	Config any
}

func (g *InterfaceConfig) UnmarshalJSON(data []byte) (err error) {
	g.Type, g.Config, err = unmarshalTagged(data, "interface", map[string]func() any{
		"http": func() any { return &HTTPInterfaceConfig{} },
	})
	return
}

type HTTPInterfaceConfig struct {
	Port        int
	EnabledAPIs []string
}
