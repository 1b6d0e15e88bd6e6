package models

import "strconv"

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
