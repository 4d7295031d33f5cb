package services

import "fmt"

// Broadcaster fans a typed notification out to a topic's subscribers.
// Publication is fire-and-forget and must only happen after the triggering
// mutation has committed.
type Broadcaster interface {
	Publish(topic string, event string, payload interface{})
}

// Notification event names, as delivered to subscribed connections.
const (
	EventMatchUpdated     = "match:updated"
	EventMatchEventAdded  = "match:event_added"
	EventMatchScore       = "match:score_updated"
	EventMatchStarted     = "match:started"
	EventMatchPaused      = "match:paused"
	EventMatchResumed     = "match:resumed"
	EventMatchFinished    = "match:finished"
	EventStandingsUpdated = "standings:updated"
)

func MatchTopic(matchID int) string {
	return fmt.Sprintf("match:%d", matchID)
}

func CategoryTopic(categoryID int) string {
	return fmt.Sprintf("category:%d", categoryID)
}

// NopBroadcaster satisfies Broadcaster where no hub is wired (tests, tools).
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, string, interface{}) {}
