// Package main writes a development CA and a server certificate signed by it
// into a directory (default "certs"). An existing CA in that directory is
// reused, so clients that already trust it keep working.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/GophNotes/internal/certgen"
)

const (
	caValidity     = 10 * 365 * 24 * time.Hour
	serverValidity = 365 * 24 * time.Hour
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs of the server")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// run creates or reuses dir/ca.{crt,key} and issues dir/server.{crt,key}.
func run(dir string, hosts []string, out io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	caCertPath := filepath.Join(dir, "ca.crt")
	caKeyPath := filepath.Join(dir, "ca.key")

	if _, err := os.Stat(caCertPath); errors.Is(err, fs.ErrNotExist) {
		certPEM, keyPEM, err := certgen.GenerateCA("GophNotes Dev CA", caValidity)
		if err != nil {
			return err
		}
		if err := writePair(caCertPath, caKeyPath, certPEM, keyPEM); err != nil {
			return err
		}
		fmt.Fprintln(out, "Generated CA", caCertPath)
	} else if err != nil {
		return err
	}

	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if err != nil {
		return err
	}
	certPEM, keyPEM, err := certgen.GenerateServerCertificate(hosts, serverValidity, caCert, caKey)
	if err != nil {
		return err
	}
	if err := writePair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), certPEM, keyPEM); err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Server certificate for %s generated into %s\n", strings.Join(hosts, ", "), dir)
	return nil
}

func writePair(certPath, keyPath string, certPEM, keyPEM []byte) error {
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", keyPath, err)
	}
	return nil
}
