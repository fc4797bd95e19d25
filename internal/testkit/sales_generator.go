package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"datalens/domain/table"
)

// SalesGeneratorConfig configures the synthetic sales table
type SalesGeneratorConfig struct {
	Rows         int       `json:"rows"`
	OrdersPerDay int       `json:"orders_per_day"`
	StartDate    time.Time `json:"start_date"`
	DailyGrowth  float64   `json:"daily_growth"` // relative unit price growth per day
	MissingRate  float64   `json:"missing_rate"` // share of units and discount cells left blank
	OutlierRate  float64   `json:"outlier_rate"` // share of rows with an inflated bulk order
	ReturnRate   float64   `json:"return_rate"`  // share of returned orders
	Seed         int64     `json:"seed"`
}

// DefaultSalesConfig returns sensible defaults for sales data generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Rows:         500,
		OrdersPerDay: 5,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DailyGrowth:  0.01,
		MissingRate:  0.03,
		OutlierRate:  0.02,
		ReturnRate:   0.08,
		Seed:         42,
	}
}

// SalesColumns is the schema of every generated table.
var SalesColumns = []table.ColumnSpec{
	{Name: "order_date", Kind: table.KindDatetime},
	{Name: "region", Kind: table.KindCategorical},
	{Name: "channel", Kind: table.KindCategorical},
	{Name: "units", Kind: table.KindNumeric},
	{Name: "unit_price", Kind: table.KindNumeric},
	{Name: "discount", Kind: table.KindNumeric},
	{Name: "revenue", Kind: table.KindNumeric},
	{Name: "returned", Kind: table.KindBoolean},
}

var regionBasePrice = []struct {
	name  string
	price float64
}{
	{"North", 12},
	{"South", 10},
	{"East", 9},
	{"West", 11},
	{"Central", 8},
}

// SalesDataGenerator generates a reproducible order table. Units and revenue
// are strongly correlated, unit price grows over time, and a small share of
// bulk orders produce revenue outliers.
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	if config.OrdersPerDay <= 0 {
		config.OrdersPerDay = 1
	}
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateTable builds the table. Calling it twice on the same generator
// continues the random stream; build a new generator to repeat a table.
func (g *SalesDataGenerator) GenerateTable() (*table.Table, error) {
	b := table.NewBuilder(SalesColumns...)
	for i := 0; i < g.config.Rows; i++ {
		if err := b.Append(g.generateOrder(i)...); err != nil {
			return nil, fmt.Errorf("failed to append order %d: %w", i, err)
		}
	}
	return b.Build()
}

func (g *SalesDataGenerator) generateOrder(i int) []table.Value {
	day := i / g.config.OrdersPerDay
	date := g.config.StartDate.AddDate(0, 0, day)

	region := regionBasePrice[g.rng.Intn(len(regionBasePrice))]
	channel := g.randomChannel()

	units := 1 + g.rng.Intn(12)
	if g.rng.Float64() < g.config.OutlierRate {
		units *= 25
	}
	price := region.price * (1 + g.config.DailyGrowth*float64(day)) * (1 + 0.05*g.rng.NormFloat64())
	price = math.Round(math.Max(price, 0.5)*100) / 100
	discount := math.Round(g.rng.Float64()*0.2*100) / 100
	revenue := math.Round(float64(units)*price*(1-discount)*100) / 100

	unitsVal := table.Float(float64(units))
	if g.rng.Float64() < g.config.MissingRate {
		unitsVal = table.Missing()
	}
	discountVal := table.Float(discount)
	if g.rng.Float64() < g.config.MissingRate {
		discountVal = table.Missing()
	}

	return []table.Value{
		table.Time(date),
		table.Text(region.name),
		table.Text(channel),
		unitsVal,
		table.Float(price),
		discountVal,
		table.Float(revenue),
		table.Bool(g.rng.Float64() < g.config.ReturnRate),
	}
}

func (g *SalesDataGenerator) randomChannel() string {
	r := g.rng.Float64()
	switch {
	case r < 0.5:
		return "online"
	case r < 0.8:
		return "retail"
	default:
		return "partner"
	}
}

// WriteCSV renders t with a header row. Missing cells are written empty.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	specs := t.Specs()
	header := make([]string, len(specs))
	for j, s := range specs {
		header[j] = s.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			record[j] = c.At(i).Label()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
