package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics holds the daemon's counters. All fields are safe for concurrent use.
type Metrics struct {
	EventsSent       atomic.Int64
	EventsReceived   atomic.Int64
	StaleDropped     atomic.Int64
	RefreshesTotal   atomic.Int64
	ConnectedClients atomic.Int32
	RepairsRun       atomic.Int64
	RepairFailures   atomic.Int64
	ColumnsRepaired  atomic.Int64
	StartTime        time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// IncEventsSent counts a message queued to one session
func (m *Metrics) IncEventsSent() { m.EventsSent.Add(1) }

// IncEventsReceived counts a board event published to the daemon
func (m *Metrics) IncEventsReceived() { m.EventsReceived.Add(1) }

// IncStaleDropped counts a session removed for missing pongs
func (m *Metrics) IncStaleDropped() { m.StaleDropped.Add(1) }

// IncRefreshesTotal counts a board_changed broadcast
func (m *Metrics) IncRefreshesTotal() { m.RefreshesTotal.Add(1) }

// IncRepairsRun counts a scheduled repair pass
func (m *Metrics) IncRepairsRun() { m.RepairsRun.Add(1) }

// IncRepairFailures counts a repair pass that errored or left failed columns
func (m *Metrics) IncRepairFailures() { m.RepairFailures.Add(1) }

// AddColumnsRepaired adds the number of columns a repair pass rewrote
func (m *Metrics) AddColumnsRepaired(n int64) { m.ColumnsRepaired.Add(n) }

func (m *Metrics) SetConnectedClients(count int32) { m.ConnectedClients.Store(count) }

func (m *Metrics) GetEventsSent() int64       { return m.EventsSent.Load() }
func (m *Metrics) GetEventsReceived() int64   { return m.EventsReceived.Load() }
func (m *Metrics) GetStaleDropped() int64     { return m.StaleDropped.Load() }
func (m *Metrics) GetRefreshesTotal() int64   { return m.RefreshesTotal.Load() }
func (m *Metrics) GetConnectedClients() int32 { return m.ConnectedClients.Load() }
func (m *Metrics) GetRepairsRun() int64       { return m.RepairsRun.Load() }
func (m *Metrics) GetRepairFailures() int64   { return m.RepairFailures.Load() }
func (m *Metrics) GetColumnsRepaired() int64  { return m.ColumnsRepaired.Load() }

// MetricsSnapshot is a point-in-time copy of Metrics, logged at shutdown
type MetricsSnapshot struct {
	EventsSent       int64     `json:"events_sent"`
	EventsReceived   int64     `json:"events_received"`
	StaleDropped     int64     `json:"stale_dropped"`
	RefreshesTotal   int64     `json:"refreshes_total"`
	ConnectedClients int32     `json:"connected_clients"`
	RepairsRun       int64     `json:"repairs_run"`
	RepairFailures   int64     `json:"repair_failures"`
	ColumnsRepaired  int64     `json:"columns_repaired"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsSent:       m.GetEventsSent(),
		EventsReceived:   m.GetEventsReceived(),
		StaleDropped:     m.GetStaleDropped(),
		RefreshesTotal:   m.GetRefreshesTotal(),
		ConnectedClients: m.GetConnectedClients(),
		RepairsRun:       m.GetRepairsRun(),
		RepairFailures:   m.GetRepairFailures(),
		ColumnsRepaired:  m.GetColumnsRepaired(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}
