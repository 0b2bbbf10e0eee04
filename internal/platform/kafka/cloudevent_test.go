package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudEvent_RoundTrip(t *testing.T) {
	type payload struct {
		ContractID string `json:"contract_id"`
		Amount     string `json:"amount"`
	}

	ce, err := NewCloudEvent("service-payment", "payment.deposit_paid", payload{ContractID: "c-1", Amount: "750000"})
	require.NoError(t, err)
	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.NotEmpty(t, ce.ID)

	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "payment.deposit_paid", parsed.Type)

	var got payload
	require.NoError(t, parsed.ParseData(&got))
	assert.Equal(t, "750000", got.Amount)
}

func TestParseCloudEvent_Rejects(t *testing.T) {
	_, err := ParseCloudEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}
