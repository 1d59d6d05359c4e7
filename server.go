package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/cpu"
)

// WebSocket clients
var (
	wsClients          = make(map[*Client]bool)
	wsClientsMu        sync.RWMutex
	monitorLoopRunning = false
)

type Client struct {
	conn *websocket.Conn
	send chan interface{}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func runServerCmd(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	port := fs.Int("p", 8080, "listen port")
	fs.Parse(args)

	runServer(*port)
}

// runServer starts the HTTP control server
func runServer(port int) {
	upgrader := websocket.Upgrader{
		CheckOrigin:     func(r *http.Request) bool { return true },
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}

	// API endpoints
	http.HandleFunc("/api/status", handleStatus)
	http.HandleFunc("/api/transmit/tone", handleTransmitTone)
	http.HandleFunc("/api/transmit/fsk", handleTransmitFSK)
	http.HandleFunc("/api/transmit/stop", handleTransmitStop)

	// Recording endpoints
	http.HandleFunc("/api/record/start", handleRecordStart)
	http.HandleFunc("/api/record/stop", handleRecordStop)
	http.HandleFunc("/api/record/status", handleRecordStatus)

	// WebSocket status/monitor endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("Upgrade:", err)
			return
		}

		log.Println("Client connected")

		client := &Client{conn: conn, send: make(chan interface{}, 256)}

		// Register client
		wsClientsMu.Lock()
		wsClients[client] = true
		shouldStart := !monitorLoopRunning
		if shouldStart {
			monitorLoopRunning = true
		}
		wsClientsMu.Unlock()

		if shouldStart {
			go runCPUMonitorLoop()
		}

		// Start write pump
		go client.writePump()

		defer func() {
			wsClientsMu.Lock()
			delete(wsClients, client)
			wsClientsMu.Unlock()
			close(client.send) // This will stop writePump
			log.Println("Client disconnected")
		}()

		// Push current state on connect, then drain the read side so we
		// notice disconnects.
		client.send <- map[string]interface{}{
			"type":   "status",
			"status": snapshotStatus(),
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Transmit control server listening on http://localhost%s", addr)
	log.Printf("Oscillator units available: %d", engine.MaxUnits())
	log.Fatal(http.ListenAndServe(addr, nil))
}

// runCPUMonitorLoop broadcasts per-core load while at least one client is
// connected. The receive side of the covert channel reads the same signal
// acoustically; this gives the operator a sanity view of it.
func runCPUMonitorLoop() {
	defer func() {
		wsClientsMu.Lock()
		monitorLoopRunning = false
		wsClientsMu.Unlock()
	}()

	for {
		wsClientsMu.RLock()
		active := len(wsClients) > 0
		wsClientsMu.RUnlock()
		if !active {
			return
		}

		// cpu.Percent blocks for the interval, so this also paces the loop.
		loads, err := cpu.Percent(500*time.Millisecond, true)
		if err != nil {
			log.Printf("CPU monitor: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		broadcastJSON(map[string]interface{}{
			"type":  "cpu_load",
			"cores": loads,
		})
	}
}

func broadcastJSON(msg interface{}) {
	wsClientsMu.RLock()
	defer wsClientsMu.RUnlock()

	for client := range wsClients {
		select {
		case client.send <- msg:
		default:
		}
	}
}

func broadcastStatus() {
	broadcastJSON(map[string]interface{}{
		"type":   "status",
		"status": snapshotStatus(),
	})
}

func hostnameOrUnknown() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
