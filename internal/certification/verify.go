package certification

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ParseCertificateHeader splits a header rendered by CertificateHeader into the
// raw certificate and witness bytes.
func ParseCertificateHeader(header string) (cert, tree []byte, err error) {
	fields := map[string][]byte{}
	for _, part := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || len(value) < 2 || value[0] != ':' || value[len(value)-1] != ':' {
			return nil, nil, fmt.Errorf("malformed certificate header field %q", part)
		}
		decoded, err := base64.StdEncoding.DecodeString(value[1 : len(value)-1])
		if err != nil {
			return nil, nil, fmt.Errorf("field %s is not base64: %w", name, err)
		}
		fields[name] = decoded
	}

	cert, ok := fields["certificate"]
	if !ok {
		return nil, nil, fmt.Errorf("certificate header has no certificate")
	}
	tree, ok = fields["tree"]
	if !ok {
		return nil, nil, fmt.Errorf("certificate header has no tree")
	}

	return cert, tree, nil
}

// Verify checks that body is the certified content of path: the certificate is
// signed by trusted, the witness hashes to the certified data and it maps
// label/path to the hash of body.
func Verify(header, label, path string, body []byte, trusted *btcec.PublicKey) error {
	rawCert, rawTree, err := ParseCertificateHeader(header)
	if err != nil {
		return err
	}

	cert, err := VerifyCertificate(rawCert, trusted)
	if err != nil {
		return err
	}

	tree, err := DecodeHashTree(rawTree)
	if err != nil {
		return err
	}
	digest := tree.Digest()
	if !bytes.Equal(digest[:], cert.Data) {
		return fmt.Errorf("witness does not match the certified data")
	}

	certified, ok := tree.Lookup([]byte(label), []byte(path))
	if !ok {
		return fmt.Errorf("path %q is not covered by the witness", path)
	}
	bodyHash := SHA256(string(body))
	if !bytes.Equal(certified, bodyHash[:]) {
		return fmt.Errorf("body hash does not match the certified hash of %q", path)
	}

	return nil
}
