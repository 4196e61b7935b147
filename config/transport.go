package config

type TransportConfig struct {
	Type   string
	Config any
}

func (g *TransportConfig) UnmarshalJSON(data []byte) (err error) {
	g.Type, g.Config, err = unmarshalTagged(data, "transport", map[string]func() any{
		"mqtt": func() any { return &MQTTTransportConfig{} },
	})
	return
}

type MQTTTransportConfig struct {
	Server   string
	ClientID string

	TLS         *MQTTTLS
	Credentials *MQTTCredentials

	QOS byte

	// ReconnectInterval and ConnectTimeout are in milliseconds.
	ReconnectInterval int
	ConnectTimeout    int
}

type MQTTTLS struct {
	IgnoreSystemRootCertificates bool
	SkipCertificateVerification  bool
	Key                          string
	Cert                         string
	CACert                       string
}

type MQTTCredentials struct {
	Username string
	Password string
}
