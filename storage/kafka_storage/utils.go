package kafka_storage

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// GetTLSConfig returns a TLS config trusting the CA bundle at trustStorePath,
// or nil (plaintext) when the path is empty.
func GetTLSConfig(trustStorePath string) (*tls.Config, error) {
	if trustStorePath == "" {
		return nil, nil
	}

	caCert, err := os.ReadFile(trustStorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read trustStorePath: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("no certificates found in %s", trustStorePath)
	}

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// PlainCredentials returns SASL/PLAIN credentials, nil when username is empty.
func PlainCredentials(username, password string) *plain.Mechanism {
	if username == "" {
		return nil
	}
	return &plain.Mechanism{Username: username, Password: password}
}

// a nil *plain.Mechanism must not reach kafka-go as a non-nil interface
func mechanism(creds *plain.Mechanism) sasl.Mechanism {
	if creds == nil {
		return nil
	}
	return creds
}
