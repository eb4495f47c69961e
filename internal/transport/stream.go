// Package transport opens the raw byte stream a peer speaks frames over:
// a mutually-authenticated TLS connection, or plain TCP under --legacy.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"os"

	"commtester/internal/errs"
)

// CertConfig names the on-disk files a mutually-authenticated TLS
// connection needs. Paths are treated as opaque byte blobs; loading and
// parsing happens here.
type CertConfig struct {
	CAPath   string
	CertPath string
	KeyPath  string
}

// Dial opens addr ("host:port"). When legacy is true it opens plain TCP and
// certs is ignored; otherwise it establishes a mutually-authenticated TLS
// connection that verifies the peer's certificate chain against certs.CAPath
// but skips hostname matching (the reference deployment relies on mutual
// cert auth, not server name matching).
func Dial(ctx context.Context, addr string, legacy bool, certs CertConfig) (net.Conn, error) {
	if legacy {
		dialer := &net.Dialer{}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, errs.Wrap(errs.Transport, "tcp dial "+addr, err)
		}
		return conn, nil
	}

	tlsCfg, err := buildTLSConfig(certs)
	if err != nil {
		return nil, err
	}

	dialer := &tls.Dialer{Config: tlsCfg}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, "tls dial "+addr, err)
	}
	return conn, nil
}

func buildTLSConfig(certs CertConfig) (*tls.Config, error) {
	caBytes, err := os.ReadFile(certs.CAPath)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, "read ca "+certs.CAPath, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, errs.New(errs.Transport, "ca file contains no usable certificates: "+certs.CAPath)
	}

	cert, err := tls.LoadX509KeyPair(certs.CertPath, certs.KeyPath)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, "load client cert/key", err)
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		// InsecureSkipVerify disables Go's built-in verification (chain AND
		// hostname) so VerifyPeerCertificate below can do chain-of-trust
		// validation against pool without the hostname comparison; it is
		// not a license to skip chain validation.
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: verifyChainIgnoringHostname(pool),
	}, nil
}

// verifyChainIgnoringHostname validates the peer's certificate chain against
// pool without checking the certificate's DNS names against the dialed
// address: identity here comes from mutual cert auth, not server name
// matching, but the chain of trust must still hold.
func verifyChainIgnoringHostname(pool *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return errors.New("no peer certificate presented")
		}

		certs := make([]*x509.Certificate, len(rawCerts))
		for i, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return err
			}
			certs[i] = cert
		}

		intermediates := x509.NewCertPool()
		for _, c := range certs[1:] {
			intermediates.AddCert(c)
		}

		_, err := certs[0].Verify(x509.VerifyOptions{
			Roots:         pool,
			Intermediates: intermediates,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		})
		return err
	}
}

// Close releases conn, closing the write side first where the underlying
// conn type supports it (TLS conns and TCP conns both do via CloseWrite) and
// then closing conn itself. It does not wait for the peer to close its side.
func Close(conn net.Conn) error {
	type writeCloser interface {
		CloseWrite() error
	}
	if wc, ok := conn.(writeCloser); ok {
		_ = wc.CloseWrite()
	}
	return conn.Close()
}
