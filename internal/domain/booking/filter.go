package booking

import (
	"fmt"
)

// FilterField is the closed set of booking fields that list queries may
// filter or sort on. Arbitrary operator-keyed objects from clients are never
// accepted; handlers translate query parameters into this typed form.
type FilterField string

const (
	FieldUserID        FilterField = "user_id"
	FieldProviderID    FilterField = "provider_id"
	FieldServiceID     FilterField = "service_id"
	FieldStatus        FilterField = "status"
	FieldPaymentStatus FilterField = "payment_status"
	FieldBookingDate   FilterField = "booking_date"
	FieldTotalAmount   FilterField = "total_amount"
	FieldCreatedAt     FilterField = "created_at"
)

// IsValid returns true if the field is filterable.
func (f FilterField) IsValid() bool {
	switch f {
	case FieldUserID, FieldProviderID, FieldServiceID, FieldStatus,
		FieldPaymentStatus, FieldBookingDate, FieldTotalAmount, FieldCreatedAt:
		return true
	}
	return false
}

// FilterOp is a comparison operator in a filter condition.
type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpGt  FilterOp = "gt"
	OpGte FilterOp = "gte"
	OpLt  FilterOp = "lt"
	OpLte FilterOp = "lte"
	OpIn  FilterOp = "in"
)

// IsValid returns true if the operator is recognized.
func (o FilterOp) IsValid() bool {
	switch o {
	case OpEq, OpGt, OpGte, OpLt, OpLte, OpIn:
		return true
	}
	return false
}

// Condition is one field comparison in a filter.
type Condition struct {
	Field FilterField
	Op    FilterOp
	Value interface{}
}

// SortField orders results by one field.
type SortField struct {
	Field FilterField
	Desc  bool
}

// Filter is a typed query over bookings: conditions, sort order and
// skip/limit pagination.
type Filter struct {
	Conditions []Condition
	Sort       []SortField
	Page       int
	Limit      int
}

// NewFilter creates an empty filter with default pagination.
func NewFilter() *Filter {
	return &Filter{Page: 1, Limit: 20}
}

// Where appends a condition.
func (f *Filter) Where(field FilterField, op FilterOp, value interface{}) *Filter {
	f.Conditions = append(f.Conditions, Condition{Field: field, Op: op, Value: value})
	return f
}

// SortBy appends a sort field.
func (f *Filter) SortBy(field FilterField, desc bool) *Filter {
	f.Sort = append(f.Sort, SortField{Field: field, Desc: desc})
	return f
}

// Paginate sets page and limit, clamping to sane bounds.
func (f *Filter) Paginate(page, limit int) *Filter {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	f.Page = page
	f.Limit = limit
	return f
}

// Validate rejects conditions or sorts referencing unknown fields or operators.
func (f *Filter) Validate() error {
	for _, c := range f.Conditions {
		if !c.Field.IsValid() {
			return fmt.Errorf("unknown filter field: %s", c.Field)
		}
		if !c.Op.IsValid() {
			return fmt.Errorf("unknown filter operator: %s", c.Op)
		}
	}
	for _, s := range f.Sort {
		if !s.Field.IsValid() {
			return fmt.Errorf("unknown sort field: %s", s.Field)
		}
	}
	return nil
}

// Offset returns the row offset for the current page.
func (f *Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}
