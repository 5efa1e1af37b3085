package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 12.35, Round2(12.345001))
	assert.Equal(t, 12.34, Round2(12.344999))
	assert.Equal(t, -3.5, Round2(-3.5))
	assert.Equal(t, 0.0, Round2(0))
}

func TestNormalizePtrDTO(t *testing.T) {
	type dto struct {
		Name  *string
		Price *float64
		Skip  *string
	}
	name := "  paracetamol  "
	price := 10.999
	in := dto{Name: &name, Price: &price}

	NormalizePtrDTO(&in)

	assert.Equal(t, "paracetamol", *in.Name)
	assert.Equal(t, 11.0, *in.Price)
	assert.Nil(t, in.Skip)
}

func TestUpdatesFromPtrDTO(t *testing.T) {
	type dto struct {
		Name    *string  `json:"name"`
		Price   *float64 `json:"unit_price"`
		Ignored *string  `json:"-"`
		Omitted *int     `json:"omitted"`
	}
	name := "cetirizine"
	price := 2.5
	ignored := "x"
	in := dto{Name: &name, Price: &price, Ignored: &ignored}

	updates := UpdatesFromPtrDTO(&in, map[string]string{"unit_price": "price"})

	assert.Equal(t, map[string]any{"name": "cetirizine", "price": 2.5}, updates)
}
