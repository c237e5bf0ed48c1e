package cart

import (
	"encoding/json"
	"fmt"
)

func Serialize(cart Cart) (string, error) {
	lines := cart.Lines
	if lines == nil {
		lines = []Line{}
	}
	bytes, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("error serializing cart: %s", err)
	}
	return string(bytes), nil
}

// Deserialize rejects anything that would break the cart invariants
func Deserialize(data string) (Cart, error) {
	lines := []Line{}
	err := json.Unmarshal([]byte(data), &lines)
	if err != nil {
		return Cart{}, fmt.Errorf("error deserializing cart: %s", err)
	}

	seen := map[Key]bool{}
	for _, l := range lines {
		if l.ProductUID == "" || l.Quantity < 1 || l.UnitPrice.IsNegative() {
			return Cart{}, fmt.Errorf("invalid cart line %+v", l)
		}
		if seen[l.Key()] {
			return Cart{}, fmt.Errorf("duplicate cart line %+v", l.Key())
		}
		seen[l.Key()] = true
	}

	if len(lines) == 0 {
		return Cart{}, nil
	}
	return Cart{Lines: lines}, nil
}
