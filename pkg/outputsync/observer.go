package outputsync

// Observer receives synchronizer lifecycle events for UI or logging.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	// OnRegister signals a producer joining the registry.
	OnRegister(pc ProducerContext)
	// OnUnregister signals a producer leaving the registry.
	OnUnregister(pc ProducerContext)
	// OnWrite signals one drained operation. err is nil on success.
	OnWrite(channel Channel, priority Priority, source Source, bytes int, err error)
	// OnQueueDepth reports the channel's queue depth after an enqueue.
	OnQueueDepth(channel Channel, depth int)
}

// nopObserver discards all events.
type nopObserver struct{}

func (nopObserver) OnRegister(ProducerContext)                    {}
func (nopObserver) OnUnregister(ProducerContext)                  {}
func (nopObserver) OnWrite(Channel, Priority, Source, int, error) {}
func (nopObserver) OnQueueDepth(Channel, int)                     {}
