package data

// Fees is the fixed per-term fee schedule in whole US dollars.
type Fees struct {
	StudentService  int
	ComputerService int
	Library         int
	Medical         int
	Other           int
	IntlOps         int
	Insurance       int
}

// Sum returns the total of all fee components.
func (f Fees) Sum() int {
	return f.StudentService + f.ComputerService + f.Library + f.Medical + f.Other + f.IntlOps + f.Insurance
}

// DefaultFees is the fee schedule applied to every statement.
var DefaultFees = Fees{
	StudentService:  340,
	ComputerService: 210,
	Library:         150,
	Medical:         95,
	Other:           680,
	IntlOps:         75,
	Insurance:       1650,
}

// Base tuition bounds (inclusive).
const (
	BaseTuitionMin = 9400
	BaseTuitionMax = 9800
)

// Differential tuition by college category.
const (
	DifferentialBusiness = 1100
	DifferentialScience  = 975
	DifferentialDefault  = 850
)
