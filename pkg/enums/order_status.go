package enums

import "fmt"

// OrderStatus tracks where a generated order sits in the delivery flow.
type OrderStatus string

const (
	OrderStatusInKitchen OrderStatus = "In kitchen"
	OrderStatusOnTheWay  OrderStatus = "On the way"
	OrderStatusReceived  OrderStatus = "Received"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusInKitchen,
	OrderStatusOnTheWay,
	OrderStatusReceived,
}

// profiles written for the legacy Spanish collections
var orderStatusAliases = map[string]OrderStatus{
	"En cocina": OrderStatusInKitchen,
	"En camino": OrderStatusOnTheWay,
	"Recibido":  OrderStatusReceived,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order reached the customer and can be reviewed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReceived
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if alias, ok := orderStatusAliases[value]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// UnmarshalText accepts canonical and legacy names in YAML and JSON input.
func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
