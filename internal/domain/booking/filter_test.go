package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Defaults(t *testing.T) {
	f := NewFilter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Zero(t, f.Offset())
}

func TestFilter_Paginate(t *testing.T) {
	f := NewFilter().Paginate(3, 50)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.Limit)
	assert.Equal(t, 100, f.Offset())

	f = NewFilter().Paginate(0, 0)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	f = NewFilter().Paginate(1, 500)
	assert.Equal(t, 100, f.Limit, "limit is clamped")
}

func TestFilter_Validate(t *testing.T) {
	f := NewFilter().
		Where(FieldStatus, OpIn, []string{"pending", "confirmed"}).
		Where(FieldTotalAmount, OpGte, 50.0).
		SortBy(FieldCreatedAt, true)
	assert.NoError(t, f.Validate())

	assert.Error(t, NewFilter().Where(FilterField("password"), OpEq, "x").Validate(),
		"unknown field rejected")
	assert.Error(t, NewFilter().Where(FieldStatus, FilterOp("like"), "x").Validate(),
		"unknown operator rejected")
	assert.Error(t, NewFilter().SortBy(FilterField("secret"), false).Validate(),
		"unknown sort field rejected")
}
