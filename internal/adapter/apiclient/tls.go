package apiclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// TLSFiles names PEM files for talking to an API behind a private CA or
// one that requires client certificates. Empty fields are skipped.
type TLSFiles struct {
	CA   string
	Cert string
	Key  string
}

func (f TLSFiles) empty() bool {
	return f == TLSFiles{}
}

// MakeTLSConfig returns a [*tls.Config] trusting f.CA in addition to the
// system roots and presenting the f.Cert/f.Key pair when both are set.
func MakeTLSConfig(f TLSFiles) (*tls.Config, error) {
	const op = "apiclient.MakeTLSConfig"

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if f.CA != "" {
		caCert, err := os.ReadFile(f.CA)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: failed to read CA certificate file: %w", op, err,
			)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("%s: failed to parse CA certificate", op)
		}
		cfg.RootCAs = pool
	}

	switch {
	case f.Cert != "" && f.Key != "":
		clientCert, err := tls.LoadX509KeyPair(f.Cert, f.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cfg.Certificates = []tls.Certificate{clientCert}
	case f.Cert != "" || f.Key != "":
		return nil, fmt.Errorf(
			"%s: %w", op, errors.New("client cert and key must be set together"),
		)
	}

	return cfg, nil
}

// TLSOpt makes the client use a transport built from f. It is a no-op when
// f is empty and replaces any client set by HTTPClientOpt otherwise.
func TLSOpt(f TLSFiles) Opt {
	return func(o *clientOpts) error {
		if f.empty() {
			return nil
		}
		cfg, err := MakeTLSConfig(f)
		if err != nil {
			return err
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg
		o.doer = &http.Client{Transport: transport}
		return nil
	}
}
