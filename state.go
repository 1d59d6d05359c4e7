package main

import (
	"sync"
	"time"
)

// Server state
type ServerState struct {
	mu sync.RWMutex

	// Active transmission
	Transmitting bool
	Mode         string // "tone", "fsk"
	SessionID    string
	Message      string
	BitsSent     int
	BitsTotal    int
	Units        int
	StartedAt    time.Time

	// Recording
	Recording     bool
	RecordingFile string
}

// TransmitStatus is the JSON snapshot returned by /api/status and pushed
// over the websocket after every state change.
type TransmitStatus struct {
	Transmitting  bool   `json:"transmitting"`
	Mode          string `json:"mode"`
	SessionID     string `json:"session_id"`
	Message       string `json:"message"`
	BitsSent      int    `json:"bits_sent"`
	BitsTotal     int    `json:"bits_total"`
	Units         int    `json:"units"`
	ElapsedMS     int64  `json:"elapsed_ms"`
	Recording     bool   `json:"recording"`
	RecordingFile string `json:"recording_file"`
}

var serverState = &ServerState{}

func snapshotStatus() TransmitStatus {
	serverState.mu.RLock()
	defer serverState.mu.RUnlock()

	var elapsed int64
	if serverState.Transmitting {
		elapsed = time.Since(serverState.StartedAt).Milliseconds()
	}
	return TransmitStatus{
		Transmitting:  serverState.Transmitting,
		Mode:          serverState.Mode,
		SessionID:     serverState.SessionID,
		Message:       serverState.Message,
		BitsSent:      serverState.BitsSent,
		BitsTotal:     serverState.BitsTotal,
		Units:         serverState.Units,
		ElapsedMS:     elapsed,
		Recording:     serverState.Recording,
		RecordingFile: serverState.RecordingFile,
	}
}
