package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"github.com/google/uuid"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/panel/config"
	"github.com/shimmeringbee/panel/interface/mqtt"
	"github.com/shimmeringbee/panel/state"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var _ mqtt.Handler = (*state.Engine)(nil)
var _ state.Transport = (*mqtt.Transport)(nil)

const ClientIDPrefix = "panel-"

func constructTransport(cfg config.TransportConfig, l logwrap.Logger) (*mqtt.Transport, error) {
	switch tCfg := cfg.Config.(type) {
	case *config.MQTTTransportConfig:
		mqttCfg, err := mqttConfig(*tCfg, l)
		if err != nil {
			return nil, err
		}

		return mqtt.New(mqttCfg, l)
	default:
		return nil, fmt.Errorf("unknown transport type loaded: %s", cfg.Type)
	}
}

func mqttConfig(cfg config.MQTTTransportConfig, l logwrap.Logger) (mqtt.Config, error) {
	retCfg := mqtt.Config{
		Server:            cfg.Server,
		ClientID:          cfg.ClientID,
		QOS:               cfg.QOS,
		ReconnectInterval: time.Duration(cfg.ReconnectInterval) * time.Millisecond,
		OperationTimeout:  time.Duration(cfg.ConnectTimeout) * time.Millisecond,
	}

	if len(retCfg.ClientID) == 0 {
		retCfg.ClientID = ClientIDPrefix + uuid.New().String()
	}

	if cfg.Credentials != nil {
		retCfg.Username = cfg.Credentials.Username
		retCfg.Password = cfg.Credentials.Password
	}

	if cfg.TLS != nil {
		tlsConfig, err := mqttTLSConfig(*cfg.TLS, l)
		if err != nil {
			return mqtt.Config{}, err
		}

		retCfg.TLS = tlsConfig
	}

	return retCfg, nil
}

func mqttTLSConfig(cfg config.MQTTTLS, l logwrap.Logger) (*tls.Config, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.SkipCertificateVerification}

	if cfg.SkipCertificateVerification {
		l.LogWarn(context.Background(), "Set to ignore remote TLS certificate, this is considered insecure.")
	}

	if len(cfg.Cert) > 0 {
		cert, err := tls.LoadX509KeyPair(cfg.Cert, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate/key for mqtt: %w", err)
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	var certPool *x509.CertPool

	if cfg.IgnoreSystemRootCertificates {
		l.LogInfo(context.Background(), "Configured to ignore system root certificates, ensure you are providing your own.")
		certPool = x509.NewCertPool()
	} else {
		var err error

		certPool, err = x509.SystemCertPool()
		if err != nil {
			if runtime.GOOS == "windows" {
				l.LogWarn(context.Background(), "Failed to load system certificate pool for root CAs, you must provide the CA root certificate for your servers trust chain.", logwrap.Err(err))
				certPool = x509.NewCertPool()
			} else {
				return nil, fmt.Errorf("failed to load system certificate pool: %w", err)
			}
		}
	}

	if len(cfg.CACert) > 0 {
		caCerts, err := os.ReadFile(filepath.Clean(cfg.CACert))
		if err != nil {
			return nil, fmt.Errorf("failed to load CA TLS certificates for mqtt: %w", err)
		}

		if !certPool.AppendCertsFromPEM(caCerts) {
			return nil, fmt.Errorf("no certificates found in CA file '%s'", cfg.CACert)
		}
	}

	tlsConfig.RootCAs = certPool

	return tlsConfig, nil
}
