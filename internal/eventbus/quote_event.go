package eventbus

type QuoteEventType string

const (
	QuoteEventCreated      QuoteEventType = "Created"
	QuoteEventBoosted      QuoteEventType = "Boosted"
	QuoteEventDecaySwept   QuoteEventType = "DecaySwept"
	QuoteEventImported     QuoteEventType = "Imported"
	QuoteEventReadFallback QuoteEventType = "ReadFallback"
)

type QuoteEvent struct {
	Type     QuoteEventType
	QuoteID  int64
	Affected int64  // 批量操作影响的条数
	Op       string // 触发回退的读操作名
	Reason   string // 远程后端的失败原因
}

type QuoteEventHandler = Handler[QuoteEvent]
type QuoteEventBus = Bus[QuoteEventType, QuoteEvent]

func NewQuoteEventBus() *QuoteEventBus {
	return NewBus[QuoteEventType, QuoteEvent]()
}
