// Package cert отвечает за самоподписанный TLS-сертификат демонстрационного
// сервера: генерацию, сохранение на диск и проверку наличия.
package cert

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sol1corejz/go-http-compress/internal/logger"
)

// Пути к файлам сертификата и ключа.
const (
	CertificateFilePath = "server.crt"
	KeyFilePath         = "server.key"
)

// GenerateCert генерирует самоподписанный сертификат и ключ в формате PEM.
func GenerateCert() ([]byte, []byte) {
	// Шаблон сертификата для локального демонстрационного сервера.
	cert := &x509.Certificate{
		SerialNumber: big.NewInt(2026),
		Subject: pkix.Name{
			Organization: []string{"go-http-compress"},
			Country:      []string{"RU"},
		},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().AddDate(1, 0, 0),
		SubjectKeyId: []byte{1, 2, 3, 4, 6},
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		logger.Log.Fatal("failed to generate private key", zap.Error(err))
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, cert, cert, &privateKey.PublicKey, privateKey)
	if err != nil {
		logger.Log.Fatal("failed to create certificate", zap.Error(err))
	}

	var certPEM bytes.Buffer
	pem.Encode(&certPEM, &pem.Block{
		Type:  "CERTIFICATE",
		Bytes: certBytes,
	})

	var keyPEM bytes.Buffer
	pem.Encode(&keyPEM, &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	return certPEM.Bytes(), keyPEM.Bytes()
}

// SaveCert сохраняет сертификат и ключ на диск.
func SaveCert(certPEM, keyPEM []byte) error {
	if err := os.WriteFile(CertificateFilePath, certPEM, 0600); err != nil {
		return err
	}
	return os.WriteFile(KeyFilePath, keyPEM, 0600)
}

// CertExists проверяет, что файлы сертификата и ключа уже существуют.
func CertExists() bool {
	if _, err := os.Stat(CertificateFilePath); err != nil {
		return false
	}
	_, err := os.Stat(KeyFilePath)
	return err == nil
}
