package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBulkPriceUpdate(t *testing.T) {
	prices := map[int]decimal.Decimal{
		205: decimal.NewFromFloat(20.0),
		101: decimal.NewFromFloat(12.0),
	}

	query, args := buildBulkPriceUpdate(prices)

	// Codes are sorted so the statement is deterministic regardless of map
	// iteration order.
	assert.Equal(t,
		"UPDATE investments SET current_price = CASE scheme_code WHEN ? THEN ? WHEN ? THEN ? END"+
			" WHERE scheme_code IN (?,?)"+
			" AND current_price <> CASE scheme_code WHEN ? THEN ? WHEN ? THEN ? END",
		query)

	require.Len(t, args, 10)
	// SET clause pairs
	assert.Equal(t, 101, args[0])
	assert.True(t, args[1].(decimal.Decimal).Equal(decimal.NewFromFloat(12.0)))
	assert.Equal(t, 205, args[2])
	assert.True(t, args[3].(decimal.Decimal).Equal(decimal.NewFromFloat(20.0)))
	// IN clause
	assert.Equal(t, 101, args[4])
	assert.Equal(t, 205, args[5])
	// Comparison clause pairs
	assert.Equal(t, 101, args[6])
	assert.True(t, args[7].(decimal.Decimal).Equal(decimal.NewFromFloat(12.0)))
	assert.Equal(t, 205, args[8])
	assert.True(t, args[9].(decimal.Decimal).Equal(decimal.NewFromFloat(20.0)))
}

func TestBuildBulkPriceUpdate_SingleScheme(t *testing.T) {
	query, args := buildBulkPriceUpdate(map[int]decimal.Decimal{
		101: decimal.NewFromFloat(11.0),
	})

	assert.Equal(t,
		"UPDATE investments SET current_price = CASE scheme_code WHEN ? THEN ? END"+
			" WHERE scheme_code IN (?)"+
			" AND current_price <> CASE scheme_code WHEN ? THEN ? END",
		query)
	assert.Len(t, args, 5)
}
