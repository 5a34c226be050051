// Package finance implements the stock quote tool over static and simulated market data.
package finance

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/toolrouter/pkg/schema"
	"github.com/effective-security/toolrouter/tools"
	"github.com/invopop/jsonschema"
)

// Currency of all quotes
const Currency = "USD"

// SimulatedNote marks quotes that are not backed by market data
const SimulatedNote = "Simulated Data"

// Simulated price range
const (
	MinSimulatedPrice = 100.0
	MaxSimulatedPrice = 500.0
)

// Request is the tool input
type Request struct {
	Ticker string `json:"ticker" yaml:"ticker" jsonschema:"title=Ticker,description=Stock ticker symbol,example=AAPL"`
}

// Quote is the tool payload
type Quote struct {
	Ticker   string  `json:"ticker" yaml:"ticker"`
	Price    float64 `json:"price" yaml:"price"`
	Currency string  `json:"currency" yaml:"currency"`
	Note     string  `json:"note,omitempty" yaml:"note,omitempty"`
}

func (q *Quote) String() string {
	s := fmt.Sprintf("%s: %.2f %s", q.Ticker, q.Price, q.Currency)
	if q.Note != "" {
		s += " (" + q.Note + ")"
	}
	return s
}

// StaticQuotes are served as is
var StaticQuotes = map[string]float64{
	"AAPL":  175.50,
	"GOOGL": 140.20,
}

// Tool returns stock quotes
type Tool struct {
	params *jsonschema.Schema
	static map[string]float64

	lock  sync.Mutex
	faker *gofakeit.Faker
}

var _ tools.Tool = (*Tool)(nil)

// New returns the finance tool.
// A zero seed produces a random sequence of simulated prices.
func New(seed uint64) *Tool {
	return &Tool{
		params: schema.MustNew(reflect.TypeOf(Request{})).Parameters,
		static: StaticQuotes,
		faker:  gofakeit.New(seed),
	}
}

func (t *Tool) Name() string {
	return tools.FinanceTool
}

func (t *Tool) Description() string {
	return "Returns the current stock price for a ticker symbol, for example AAPL or GOOGL."
}

func (t *Tool) Parameters() *jsonschema.Schema {
	return t.params
}

// Invoke returns the quote for args[ticker]
func (t *Tool) Invoke(_ context.Context, args tools.Arguments) (*tools.Result, error) {
	ticker, err := args.Require(tools.ArgTicker)
	if err != nil {
		return tools.Failure(err.Error()), nil
	}
	ticker = strings.ToUpper(ticker)
	return tools.Success(t.Quote(ticker)), nil
}

// Quote returns the quote for the upper-cased ticker
func (t *Tool) Quote(ticker string) *Quote {
	if price, ok := t.static[ticker]; ok {
		return &Quote{
			Ticker:   ticker,
			Price:    price,
			Currency: Currency,
		}
	}

	t.lock.Lock()
	price := t.faker.Float64Range(MinSimulatedPrice, MaxSimulatedPrice)
	t.lock.Unlock()

	return &Quote{
		Ticker:   ticker,
		Price:    math.Round(price*100) / 100,
		Currency: Currency,
		Note:     SimulatedNote,
	}
}
