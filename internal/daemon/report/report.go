// Package report is the Daemon Edge's outbound reporter: it POSTs a
// captured credential attempt to the central ingestion service's
// /brute/attack/add endpoint, matching the bearer-authenticated JSON
// payload of original_source's payload.rs/endpoint.rs.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/chomnr/brute-go/internal/apperr"
)

// Client posts captured attempts to the ingestion service. A failed POST
// is a TransportFailure: the caller logs it and drops the attempt, with no
// retry, per spec §7.
type Client struct {
	endpoint    string
	bearerToken string
	httpClient  *http.Client
}

// New builds a Client targeting endpoint (the ADD_ATTACK_ENDPOINT
// environment variable) with bearerToken attached to every request.
func New(endpoint, bearerToken string) *Client {
	return &Client{
		endpoint:    endpoint,
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

type payload struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	IPAddress string `json:"ip_address"`
	Protocol  string `json:"protocol"`
}

// Report implements sshd.Reporter and ftpd.Reporter.
func (c *Client) Report(username, password, ip, protocol string) error {
	body, err := json.Marshal(payload{Username: username, Password: password, IPAddress: ip, Protocol: protocol})
	if err != nil {
		return apperr.Transport("report: encoding payload", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperr.Transport("report: building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.bearerToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Transport("report: POST failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperr.Transport(fmt.Sprintf("report: ingestion service returned status %d", resp.StatusCode), nil)
	}
	return nil
}
