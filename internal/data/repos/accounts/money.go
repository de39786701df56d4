package accounts

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Money is a decimal column stored without loss on every supported driver.
// SQLite gives NUMERIC columns float affinity, so amounts live in TEXT there;
// postgres keeps an unconstrained numeric.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

func (Money) GormDataType() string { return "numeric" }

func (Money) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "numeric"
}
