package bus

import "github.com/helioquant/helios/pkg/common"

// Well-known topic hierarchies published by the core.
const (
	TopicFills           = "events.fill"
	TopicPositionOpened  = "events.position.opened"
	TopicPositionChanged = "events.position.changed"
	TopicPositionClosed  = "events.position.closed"
)

func FillTopic(id common.InstrumentID) string {
	return TopicFills + "." + id.String()
}

func PositionOpenedTopic(id common.InstrumentID) string {
	return TopicPositionOpened + "." + id.String()
}

func PositionChangedTopic(id common.InstrumentID) string {
	return TopicPositionChanged + "." + id.String()
}

func PositionClosedTopic(id common.InstrumentID) string {
	return TopicPositionClosed + "." + id.String()
}
