// Package main writes a development TLS bundle for the ContentAI backend:
// a CA for the client's -ca flag and a server pair for -cert and -key.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/ContentAI/internal/certgen"
)

func run(args []string) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma separated server host names and IPs")
	validFor := fs.Duration("valid", 365*24*time.Hour, "certificate lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	b, err := certgen.NewBundle(names, *validFor)
	if err != nil {
		return err
	}
	if err := certgen.WriteBundle(*dir, b); err != nil {
		return err
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
