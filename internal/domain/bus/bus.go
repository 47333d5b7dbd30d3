package bus

// Topic names a fixed channel on the bus. Topics are never created at runtime.
type Topic string

const (
	TopicGive          Topic = "give"
	TopicUse           Topic = "use"
	TopicBuild         Topic = "build"
	TopicUnbuild       Topic = "unbuild"
	TopicStartBuild    Topic = "start-build"
	TopicArrival       Topic = "arrival"
	TopicLoseSomeone   Topic = "lose-someone"
	TopicLose          Topic = "lose"
	TopicWin           Topic = "win"
	TopicLock          Topic = "lock"
	TopicUnlock        Topic = "unlock"
	TopicIncidentStart Topic = "incident-start"
	TopicIncidentEnd   Topic = "incident-end"
	TopicDecision      Topic = "decision"
	TopicClick         Topic = "click"
	TopicActionEnd     Topic = "action-end"
	TopicRunsOut       Topic = "runs-out"
	TopicPerk          Topic = "perk"
	TopicNotice        Topic = "notice"
	TopicKeyDown       Topic = "key-down"
	TopicKeyUp         Topic = "key-up"
)

// Topics lists every registered topic in a stable order.
func Topics() []Topic {
	return []Topic{
		TopicGive, TopicUse, TopicBuild, TopicUnbuild, TopicStartBuild,
		TopicArrival, TopicLoseSomeone, TopicLose, TopicWin,
		TopicLock, TopicUnlock,
		TopicIncidentStart, TopicIncidentEnd, TopicDecision,
		TopicClick, TopicActionEnd, TopicRunsOut, TopicPerk, TopicNotice,
		TopicKeyDown, TopicKeyUp,
	}
}

func Known(t Topic) bool {
	for _, k := range Topics() {
		if k == t {
			return true
		}
	}
	return false
}

type Handler func(payload any)

// Bus is a synchronous publish/subscribe hub. It is not safe for concurrent
// use; the owning session serializes every call.
type Bus struct {
	handlers map[Topic][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[Topic][]Handler)}
}

// Subscribe registers h for t. Subscribing to an unknown topic is ignored.
func (b *Bus) Subscribe(t Topic, h Handler) {
	if h == nil || !Known(t) {
		return
	}
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers h on every topic; the handler receives the topic with the payload.
func (b *Bus) SubscribeAll(h func(t Topic, payload any)) {
	if h == nil {
		return
	}
	for _, t := range Topics() {
		topic := t
		b.handlers[topic] = append(b.handlers[topic], func(payload any) { h(topic, payload) })
	}
}

// Publish invokes every handler of t in subscription order. Handlers added
// while publishing only see later publications.
func (b *Bus) Publish(t Topic, payload any) {
	hs := b.handlers[t]
	if len(hs) == 0 {
		return
	}
	snapshot := make([]Handler, len(hs))
	copy(snapshot, hs)
	for _, h := range snapshot {
		h(payload)
	}
}
