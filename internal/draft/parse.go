package draft

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCostQuantity reads a needed item's "unit cost x quantity", written as
// "12.5 x 4", "12.5*4" or "12.5 4".
func ParseCostQuantity(s string) (cost, quantity float64, err error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == 'x' || r == '*' || r == ' ' || r == '×'
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("enter unit cost x quantity, e.g. 50 x 4")
	}
	cost, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unit cost %q is not a number", fields[0])
	}
	quantity, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("quantity %q is not a number", fields[1])
	}
	if err := checkAmounts(cost, quantity); err != nil {
		return 0, 0, err
	}
	return cost, quantity, nil
}
