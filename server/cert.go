package server

import "crypto/tls"

type staticCert struct {
	cert *tls.Certificate
}

func (c staticCert) GetCert(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return c.cert, nil
}

// LoadCertificate returns a CertProvider serving the key pair in certFile
// and keyFile.
func LoadCertificate(certFile, keyFile string) (CertProvider, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return staticCert{&cert}, nil
}
