package common

type (
	TraderID     string
	ComponentID  string
	StrategyID   = ComponentID
	ActorID      = ComponentID
	InstrumentID string
	PositionID   string
	AccountID    string
	OrderID      string
	Venue        string
)

func (id TraderID) String() string     { return string(id) }
func (id ComponentID) String() string  { return string(id) }
func (id InstrumentID) String() string { return string(id) }
func (id PositionID) String() string   { return string(id) }
func (id AccountID) String() string    { return string(id) }
func (id OrderID) String() string      { return string(id) }
func (v Venue) String() string         { return string(v) }
