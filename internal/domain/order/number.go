package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const NumberPrefix = "ORD-"

// NewOrderNumber returns ORD-<yyyymmddhhmmss>-<6 hex>. The random suffix keeps
// numbers distinct within the same second; the orders table also enforces uniqueness.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return NumberPrefix + now.UTC().Format("20060102150405") + "-" + strings.ToUpper(suffix)
}
