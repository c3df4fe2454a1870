package common

type OrderSide int
type PositionSide int

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

const (
	PositionSideFlat PositionSide = iota
	PositionSideLong
	PositionSideShort
)

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "buy"
	case OrderSideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the other order side.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

func (s PositionSide) String() string {
	switch s {
	case PositionSideFlat:
		return "flat"
	case PositionSideLong:
		return "long"
	case PositionSideShort:
		return "short"
	default:
		return "unknown"
	}
}
