// Package sshd is the SSH decoy listener of the Daemon Edge (spec
// component, §4.6): it rejects every password attempt except the
// configured admin tuple, and hands each rejected attempt's (username,
// password, source-ip) to a reporter before rejecting. Connections from a
// loopback source are closed without reporting.
package sshd

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
)

var sshLogger = log.New(log.Writer(), "[SSHD] ", log.LstdFlags)

// Reporter forwards a captured credential attempt to the central
// ingestion service.
type Reporter interface {
	Report(username, password, ip, protocol string) error
}

// Server is the SSH decoy listener.
type Server struct {
	addr          string
	adminUsername string
	adminPassword string
	reporter      Reporter
	hostKey       ssh.Signer
}

// New builds a Server bound to addr (e.g. ":22"), generating a fresh
// ed25519 host key for this process, per spec §4.6.
func New(addr, adminUsername, adminPassword string, reporter Reporter) (*Server, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("sshd: generating host key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("sshd: wrapping host key: %w", err)
	}
	return &Server{
		addr:          addr,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		reporter:      reporter,
		hostKey:       signer,
	}, nil
}

// ListenAndServe binds addr and serves connections. It returns only if
// binding fails, the one fatal condition of spec §7; accept errors are
// logged and the loop continues.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("sshd: binding %s: %w", s.addr, err)
	}
	sshLogger.Printf("listening on %s", s.addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			sshLogger.Printf("accept error: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	sourceIP := hostOf(conn.RemoteAddr().String())
	if isLoopback(sourceIP) {
		return
	}

	first := true
	config := &ssh.ServerConfig{
		PublicKeyCallback: func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			return nil, fmt.Errorf("publickey authentication is not supported")
		},
		PasswordCallback: func(c ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			delay(&first)

			username := c.User()
			if username == s.adminUsername && string(password) == s.adminPassword && s.adminUsername != "" {
				return &ssh.Permissions{}, nil
			}

			if err := s.reporter.Report(username, string(password), sourceIP, "SSH"); err != nil {
				sshLogger.Printf("report failed: %v", err)
			}
			return nil, fmt.Errorf("authentication failed")
		},
	}
	config.AddHostKey(s.hostKey)

	sconn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		// Admin login succeeds the handshake; every other attempt ends
		// here with an authentication error, which is the expected path.
		return
	}
	defer sconn.Close()

	// Operator diagnostics only: accept the handshake, expose nothing.
	go ssh.DiscardRequests(reqs)
	for newChannel := range chans {
		newChannel.Reject(ssh.Prohibited, "no channels are available")
	}
}

// delay implements spec §4.6's 0s-initial / >=1s-subsequent rejection
// delay, slowing credential-stuffing after the first attempt on a
// connection.
func delay(first *bool) {
	if *first {
		*first = false
		return
	}
	time.Sleep(time.Second)
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
