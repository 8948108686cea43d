package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest stock level or line quantity a variant can hold.
// Quantities are stored in INTEGER columns.
const MaxQuantity = math.MaxInt32

// MaxPage bounds page numbers so that (page-1)*limit stays within MaxQuantity
// for every allowed limit.
const MaxPage = MaxQuantity / 100

// MaxAmount is the largest value of a NUMERIC(14,2) money column.
var MaxAmount = decimal.RequireFromString("999999999999.99")
