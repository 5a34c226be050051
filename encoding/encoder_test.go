package encoding_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quote struct {
	Ticker string  `json:"ticker" yaml:"ticker" toml:"ticker" validate:"required"`
	Price  float64 `json:"price" yaml:"price" toml:"price"`
}

func (q quote) String() string { return q.Ticker }

func TestNew(t *testing.T) {
	for _, f := range encoding.Formats() {
		enc, err := encoding.New(f)
		require.NoError(t, err, f)
		assert.NotNil(t, enc)
	}

	enc, err := encoding.New("")
	require.NoError(t, err)
	assert.NotNil(t, enc)

	_, err = encoding.New("xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, encoding.ErrUnsupportedFormat))
	assert.EqualError(t, err, "unsupported format: xml")
}

func TestEncode(t *testing.T) {
	q := quote{Ticker: "AAPL", Price: 175.5}

	tcases := []struct {
		format encoding.Format
		exp    string
	}{
		{encoding.FormatJSON, "{\n  \"ticker\": \"AAPL\",\n  \"price\": 175.5\n}"},
		{encoding.FormatYAML, "ticker: AAPL\nprice: 175.5"},
		{encoding.FormatTOML, "ticker = \"AAPL\"\nprice = 175.5"},
		{encoding.FormatText, "AAPL"},
	}
	for _, tc := range tcases {
		t.Run(tc.format, func(t *testing.T) {
			enc, err := encoding.New(tc.format)
			require.NoError(t, err)

			s, err := encoding.Encode(enc, q)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, s)

			s, err = encoding.Encode(enc, "plain text")
			require.NoError(t, err)
			assert.Equal(t, "plain text", s)
		})
	}
}

func TestDecode_Validate(t *testing.T) {
	enc, err := encoding.New(encoding.FormatJSON)
	require.NoError(t, err)

	q, err := encoding.Decode[quote](enc, []byte("```json\n{\"ticker\":\"MSFT\",\"price\":1}\n```"))
	require.NoError(t, err)
	assert.Equal(t, "MSFT", q.Ticker)

	_, err = encoding.Decode[quote](enc, []byte(`{"price":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate")

	_, err = encoding.Decode[quote](enc, []byte(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

// audit records are sent to the CLI in the configured format
func TestAuditRecords(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	records := []*audit.Record{
		{ID: "2", SessionID: "s", ToolName: "math", Input: "{}", Output: "4", Status: "success", Timestamp: ts},
		{ID: "1", SessionID: "s", ToolName: "finance", Input: "{}", Output: "error: x", Status: "error", Timestamp: ts},
	}

	for _, f := range []encoding.Format{encoding.FormatJSON, encoding.FormatYAML, encoding.FormatTOML} {
		t.Run(f, func(t *testing.T) {
			enc, err := encoding.New(f)
			require.NoError(t, err)

			s, err := encoding.Encode(enc, records)
			require.NoError(t, err)

			list, err := encoding.Decode[[]*audit.Record](enc, []byte(s))
			require.NoError(t, err)
			require.Len(t, *list, 2)
			got := *list
			assert.Equal(t, "math", got[0].ToolName)
			assert.Equal(t, "finance", got[1].ToolName)
			assert.Equal(t, "error: x", got[1].Output)
			assert.True(t, ts.Equal(got[1].Timestamp))
		})
	}
}
