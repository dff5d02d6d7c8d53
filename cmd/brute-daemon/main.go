// Command brute-daemon is the Daemon Edge: it binds the SSH and FTP decoy
// listeners and reports every captured credential attempt to the central
// ingestion service, per spec §4.6.
package main

import (
	"log"

	"github.com/chomnr/brute-go/internal/config"
	"github.com/chomnr/brute-go/internal/daemon/ftpd"
	"github.com/chomnr/brute-go/internal/daemon/report"
	"github.com/chomnr/brute-go/internal/daemon/sshd"
)

const ftpAddr = ":21"

func main() {
	cfg := config.Daemon()

	reporter := report.New(cfg.AddAttackEndpoint, cfg.BearerToken)

	sshServer, err := sshd.New(":"+cfg.SSHPort, cfg.SSHAdminUsername, cfg.SSHAdminPassword, reporter)
	if err != nil {
		log.Fatalf("brute-daemon: building SSH listener: %v", err)
	}

	ftpServer, err := ftpd.New(ftpAddr, cfg.FTPRoot, reporter)
	if err != nil {
		log.Fatalf("brute-daemon: building FTP listener: %v", err)
	}

	errs := make(chan error, 2)
	go func() { errs <- sshServer.ListenAndServe() }()
	go func() { errs <- ftpServer.ListenAndServe() }()

	log.Fatalf("brute-daemon: listener exited: %v", <-errs)
}
