package formatting

import "fmt"

// FormatPrice форматирует цену за час в целых евро
func FormatPrice(pricePerHour int) string {
	return fmt.Sprintf("%d €/час", pricePerHour)
}
