package messaging

// LifecycleStats counts the work a ConnectionManager has performed since
// construction. Resolution counters move only when a handle is actually
// built, so steady-state traffic over an established link leaves them flat.
type LifecycleStats struct {
	FactoryResolutions     int64
	ConnectionsOpened      int64
	SessionsOpened         int64
	DestinationResolutions int64
	ProducersOpened        int64
	ConsumersOpened        int64
	MessagesSent           int64
	MessagesReceived       int64
	Closes                 int64
}

// LifecycleState reports which handles are currently resolved, in
// dependency order. Presence of a handle implies presence of everything
// before it in the chain.
type LifecycleState struct {
	Factory     bool
	Connection  bool
	Session     bool
	Destination bool
	Producer    bool
	Consumer    bool
}
