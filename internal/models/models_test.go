package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductTotalStock(t *testing.T) {
	t.Parallel()

	p := Product{Variants: []Variant{
		{Size: "M", Color: "black", Quantity: 5},
		{Size: "S", Color: "black", Quantity: 3},
		{Size: "L", Color: "white", Quantity: 0},
	}}
	assert.Equal(t, 8, p.TotalStock())

	empty := Product{}
	assert.Zero(t, empty.TotalStock())
}

func TestProductAverageRating(t *testing.T) {
	t.Parallel()

	p := Product{Reviews: []Review{{Rating: 5}, {Rating: 4}, {Rating: 3}}}
	assert.InDelta(t, 4, p.AverageRating(), 0.001)

	unrated := Product{}
	assert.Zero(t, unrated.AverageRating())
}

func TestShippingAddressComplete(t *testing.T) {
	t.Parallel()

	full := ShippingAddress{
		FullName:   "Ivan Petrov",
		Address:    "Lenina 10",
		City:       "Moscow",
		PostalCode: "101000",
		Country:    "RU",
		Phone:      "+79990001122",
	}
	assert.True(t, full.Complete())

	missing := full
	missing.PostalCode = ""
	assert.False(t, missing.Complete())

	assert.False(t, ShippingAddress{}.Complete())
}
