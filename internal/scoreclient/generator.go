package scoreclient

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/okian/housescore/internal/domain/schema"
	"github.com/okian/housescore/pkg/logger"
)

// Constants for random value generation.
const (
	randomFloatDivisor = 1000000
	nullOneIn          = 20
	maxID              = math.MaxInt16
)

// span is an inclusive integer range.
type span struct{ lo, hi int64 }

// Plausible ranges per column; columns not listed fall back to their kind.
var columnSpans = map[string]span{
	"MSSubClass":   {20, 190},
	"LotArea":      {1300, 40000},
	"OverallQual":  {1, 10},
	"OverallCond":  {1, 9},
	"YearBuilt":    {1880, 2010},
	"YearRemodAdd": {1950, 2010},
	"1stFlrSF":     {400, 2500},
	"2ndFlrSF":     {0, 1500},
	"GrLivArea":    {500, 4000},
	"FullBath":     {0, 3},
	"HalfBath":     {0, 2},
	"BedroomAbvGr": {0, 6},
	"KitchenAbvGr": {0, 2},
	"TotRmsAbvGrd": {2, 12},
	"Fireplaces":   {0, 3},
	"MoSold":       {1, 12},
	"YrSold":       {2006, 2010},
	"GarageYrBlt":  {1900, 2010},
	"GarageCars":   {0, 4},
	"LotFrontage":  {20, 200},
}

var kindSpans = map[schema.Kind]span{
	schema.KindInt8:    {0, 10},
	schema.KindInt16:   {0, 500},
	schema.KindInt32:   {0, 20000},
	schema.KindFloat32: {0, 1000},
}

// Observed categories for a few columns; other string columns use the
// schema default.
var columnCategories = map[string][]string{
	"MSZoning":      {"RL", "RM", "FV", "RH", "C (all)"},
	"Street":        {"Pave", "Grvl"},
	"Neighborhood":  {"CollgCr", "Veenker", "Crawfor", "NoRidge", "Mitchel", "Somerst", "NWAmes", "OldTown"},
	"BldgType":      {"1Fam", "2fmCon", "Duplex", "TwnhsE", "Twnhs"},
	"HouseStyle":    {"1Story", "2Story", "1.5Fin", "SLvl", "SFoyer"},
	"ExterQual":     {"Ex", "Gd", "TA", "Fa"},
	"KitchenQual":   {"Ex", "Gd", "TA", "Fa"},
	"SaleType":      {"WD", "New", "COD", "ConLD"},
	"SaleCondition": {"Normal", "Abnorml", "Partial", "AdjLand", "Alloca", "Family"},
}

// randomInt returns a uniform integer in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	return float64(randomInt(randomFloatDivisor)) / float64(randomFloatDivisor)
}

func between(s span) int64 {
	return s.lo + randomInt(s.hi-s.lo+1)
}

// GenerateRows creates n rows that satisfy sc. Ids are sequential from 1.
func GenerateRows(ctx context.Context, sc *schema.Schema, n int) ([]Row, error) {
	logger.Get().Info(ctx, "generating feature rows", logger.Int("rows", n))

	rows := make([]Row, n)
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during row generation: %w", err)
		}
		rows[i] = generateSingleRow(sc, i)
	}
	return rows, nil
}

// generateSingleRow fills every column of sc with a random valid value.
func generateSingleRow(sc *schema.Schema, index int) Row {
	row := make(Row, sc.Len())
	for _, col := range sc.Columns() {
		row[col.Name] = randomValue(col)
	}
	row["Id"] = index%maxID + 1
	return row
}

func randomValue(col schema.Column) any {
	s, ok := columnSpans[col.Name]
	if !ok {
		s = kindSpans[col.Kind]
	}
	switch col.Kind {
	case schema.KindInt8, schema.KindInt16, schema.KindInt32:
		return between(s)
	case schema.KindFloat32:
		if randomInt(nullOneIn) == 0 {
			return nil
		}
		return math.Round((float64(s.lo)+getRandomFloat()*float64(s.hi-s.lo))*100) / 100
	case schema.KindBool:
		return randomInt(2) == 1
	default:
		cats, ok := columnCategories[col.Name]
		if !ok {
			return schema.DefaultString
		}
		return cats[randomInt(int64(len(cats)))]
	}
}

// Batches splits rows into consecutive groups of at most size rows.
func Batches(rows []Row, size int) [][]Row {
	if size <= 0 {
		size = len(rows)
	}
	var out [][]Row
	for start := 0; start < len(rows); start += size {
		end := minInt(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}

// Table encodes rows in the requested orientation.
func Table(sc *schema.Schema, rows []Row, orientation string) any {
	if orientation != OrientSplit {
		return rows
	}
	table := SplitTable{Columns: sc.Names(), Data: make([][]any, len(rows))}
	for i, row := range rows {
		cells := make([]any, len(table.Columns))
		for j, name := range table.Columns {
			cells[j] = row[name]
		}
		table.Data[i] = cells
	}
	return table
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
