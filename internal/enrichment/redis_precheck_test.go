package enrichment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chomnr/brute-go/internal/model"
)

// TestEnrichment_JSONRoundTripPreservesSubObjects guards against the
// precheck cache silently dropping the Asn/Company/Privacy/Abuse/Domains
// sub-objects on Set and zero-valuing them on Get — RedisPrecheck.Get and
// .Set marshal/unmarshal exactly this way (see redis_precheck.go), so a
// tag regression here would corrupt every cached enrichment.
func TestEnrichment_JSONRoundTripPreservesSubObjects(t *testing.T) {
	original := model.Enrichment{
		Hostname: "host.example.com",
		City:     "Springfield",
		Region:   "Mainland",
		Country:  "US",
		Loc:      "1.0,2.0",
		Org:      "Example ISP",
		Postal:   "12345",
		Timezone: "America/Chicago",
		Asn: model.Asn{
			ASN:    "AS1234",
			Name:   "Example Networks",
			Domain: "example.net",
			Route:  "1.0.0.0/24",
			Type:   "isp",
		},
		Company: model.Company{
			Name:   "Example Corp",
			Domain: "example.com",
			Type:   "business",
		},
		Privacy: model.Privacy{
			VPN:     true,
			Proxy:   true,
			Tor:     false,
			Relay:   false,
			Hosting: true,
			Service: "ExampleVPN",
		},
		Abuse: model.Abuse{
			Address: "123 Main St",
			Country: "US",
			Email:   "abuse@example.com",
			Name:    "Example Abuse Desk",
			Network: "1.0.0.0/24",
			Phone:   "+1-555-0100",
		},
		Domains: model.Domains{
			IP:      "1.2.3.4",
			Total:   3,
			Domains: []string{"a.example.com", "b.example.com"},
		},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var roundTripped model.Enrichment
	require.NoError(t, json.Unmarshal(raw, &roundTripped))

	assert.Equal(t, original, roundTripped)
	assert.NotEqual(t, model.Asn{}, roundTripped.Asn)
	assert.NotEqual(t, model.Company{}, roundTripped.Company)
	assert.NotEqual(t, model.Abuse{}, roundTripped.Abuse)
	assert.ElementsMatch(t, original.Domains.Domains, roundTripped.Domains.Domains)
}

func TestEnrichment_JSONRoundTripZeroValueStaysZero(t *testing.T) {
	raw, err := json.Marshal(model.Enrichment{})
	require.NoError(t, err)

	var roundTripped model.Enrichment
	require.NoError(t, json.Unmarshal(raw, &roundTripped))

	assert.Equal(t, model.Enrichment{}, roundTripped)
}
