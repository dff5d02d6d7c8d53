// Package sink implements the Credential Sink (spec component C1): it
// normalizes and validates an incoming credential attempt before handing it
// to the Aggregator's mailbox.
package sink

import (
	"net"
	"strings"

	"github.com/chomnr/brute-go/internal/apperr"
	"github.com/chomnr/brute-go/internal/model"
)

// field length bounds, per spec §3.
const (
	maxFieldLen255 = 255
	maxProtocolLen = 50
)

var privateNetworks = mustParseNets(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"fc00::/7",
	"fe80::/10",
)

func mustParseNets(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic("sink: invalid static CIDR " + c + ": " + err.Error())
		}
		nets = append(nets, n)
	}
	return nets
}

// Sink is the Credential Sink. It holds no state beyond the mailbox it
// forwards accepted events to.
type Sink struct {
	submit chan<- model.Event
}

// New returns a Sink that forwards accepted events onto submit — typically
// the Aggregator's mailbox channel.
func New(submit chan<- model.Event) *Sink {
	return &Sink{submit: submit}
}

// Submit validates (username, password, ip, protocol) per spec §4.1, in
// order, first failure wins. On success it enqueues the canonical Event
// (empty ID, zero Timestamp — the Aggregator assigns both) onto the mailbox
// and returns nil. On failure it returns a *apperr.Error of kind
// ValidationFailure and enqueues nothing.
func (s *Sink) Submit(username, password, ip, protocol string) error {
	event, err := Validate(username, password, ip, protocol)
	if err != nil {
		return err
	}
	s.submit <- event
	return nil
}

// Validate applies the Credential Sink's rules without touching the
// mailbox, so the HTTP layer and tests can call it directly.
func Validate(username, password, ip, protocol string) (model.Event, error) {
	if username == "" {
		return model.Event{}, apperr.Validation("input validation error: username is empty")
	}
	if len(username) > maxFieldLen255 {
		return model.Event{}, apperr.Validation("input validation error: username is too long, max is 255 characters")
	}
	if password == "" {
		return model.Event{}, apperr.Validation("input validation error: password is empty")
	}
	if len(password) > maxFieldLen255 {
		return model.Event{}, apperr.Validation("input validation error: password is too long, max is 255 characters")
	}
	if ip == "" {
		return model.Event{}, apperr.Validation("input validation error: ip is empty")
	}
	if protocol == "" {
		return model.Event{}, apperr.Validation("input validation error: protocol is empty")
	}
	if len(protocol) > maxProtocolLen {
		return model.Event{}, apperr.Validation("input validation error: protocol is too long, max is 50 characters")
	}

	if err := validateIP(ip); err != nil {
		return model.Event{}, err
	}

	if strings.EqualFold(protocol, "sshd") {
		protocol = "SSH"
	}

	return model.Event{
		Username: username,
		Password: password,
		IP:       ip,
		Protocol: protocol,
	}, nil
}

func validateIP(ipStr string) error {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return apperr.Validation("input validation error: invalid IP address format")
	}
	for _, n := range privateNetworks {
		if n.Contains(ip) {
			return apperr.Validation("input validation error: IP address is from a private network")
		}
	}
	return nil
}
