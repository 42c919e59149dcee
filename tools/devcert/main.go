// Package main writes a self-signed certificate and key for running the card
// server over HTTPS locally. Point TLS_CERT_FILE and TLS_KEY_FILE at the
// generated files.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atinyakov/bizcard/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated host names and IPs")
	validFor := flag.Duration("valid-for", 365*24*time.Hour, "certificate lifetime")
	flag.Parse()

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(splitHosts(*hosts), *validFor)
	if err != nil {
		log.Fatal(err)
	}
	certPath, keyPath, err := certgen.WriteFiles(*dir, certPEM, keyPEM)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Certificate: %s\nKey:         %s\n", certPath, keyPath)
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
