package metrics

const (
	RoomsCreated            = "rooms_created_total"
	RoomAdmissions          = "room_admissions_total"
	MessagesSent            = "messages_sent_total"
	RoomsDestroyed          = "rooms_destroyed_total"
	AnalyticsMirrorFailures = "analytics_mirror_failures_total"
	RealtimeDropped         = "realtime_envelopes_dropped_total"

	HTTPRequests        = "http_requests_total"
	HTTPRequestDuration = "http_request_duration_seconds"
	ActiveWebsockets    = "active_websocket_connections"
)

// RegisterDefaults creates every instrument the service records.
func RegisterDefaults(m Manager) {
	m.NewGauge("app_go_routines", "Number of goroutines")
	m.NewGauge("app_sys_memory_alloc", "Bytes allocated and in use")
	m.NewGauge("app_sys_total_alloc", "Total bytes allocated")
	m.NewGauge("app_go_numGC", "Number of completed GC cycles")
	m.NewGauge("app_go_sys", "Total bytes of memory obtained from OS")

	m.NewCounter(HTTPRequests, "Total number of HTTP requests")
	m.NewHistogram(HTTPRequestDuration, "HTTP request duration in seconds",
		.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5)
	m.NewUpDownCounter(ActiveWebsockets, "Number of active WebSocket connections")

	m.NewCounter(RoomsCreated, "Rooms created")
	m.NewCounter(RoomAdmissions, "Admission attempts by outcome")
	m.NewCounter(MessagesSent, "Messages appended to room logs")
	m.NewCounter(RoomsDestroyed, "Rooms destroyed explicitly")
	m.NewCounter(AnalyticsMirrorFailures, "Analytics mirror writes that failed")
	m.NewCounter(RealtimeDropped, "Realtime envelopes dropped for slow clients")
}
