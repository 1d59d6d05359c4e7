package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/psutone/pkg/modem"
	"github.com/psutone/pkg/oscillator"
)

// API Handlers

func handleStatus(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(snapshotStatus())
}

func handleTransmitTone(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		FreqHz     int     `json:"freq_hz"`
		DurationMS int     `json:"duration_ms"`
		DutyCycle  float64 `json:"duty_cycle"`
		Units      int     `json:"units"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.Units <= 0 {
		req.Units = engine.MaxUnits()
	}

	spec := oscillator.WaveformSpec{
		FreqHz:    req.FreqHz,
		Duration:  time.Duration(req.DurationMS) * time.Millisecond,
		DutyCycle: req.DutyCycle,
		Units:     req.Units,
	}
	if err := beginTransmission("tone", fmt.Sprintf("%d Hz", req.FreqHz), 0, req.Units); err != nil {
		http.Error(w, err.Error(), 409)
		return
	}

	go func() {
		carrier, done := recordedCarrier("tone")
		err := carrier.PlayWaveform(spec)
		done()
		endTransmission(err)
	}()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"status":  snapshotStatus(),
	})
}

func handleTransmitFSK(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		Message string `json:"message"`
		Freq0Hz int    `json:"freq0_hz"`
		Freq1Hz int    `json:"freq1_hz"`
		BitMS   int    `json:"bit_ms"`
		Units   int    `json:"units"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", 400)
		return
	}
	if len(req.Message) > modem.MaxPayload {
		http.Error(w, fmt.Sprintf("message exceeds %d bytes", modem.MaxPayload), 400)
		return
	}
	if req.Freq0Hz == 0 {
		req.Freq0Hz = 4000
	}
	if req.Freq1Hz == 0 {
		req.Freq1Hz = 4500
	}
	if req.BitMS <= 0 {
		req.BitMS = 100
	}
	if req.Units <= 0 {
		req.Units = engine.MaxUnits()
	}

	params := modem.FSKParams{
		Freq0Hz:     req.Freq0Hz,
		Freq1Hz:     req.Freq1Hz,
		BitDuration: time.Duration(req.BitMS) * time.Millisecond,
	}

	// Preamble + payload + CRC, eight symbols each.
	bitsTotal := (1 + len(req.Message) + 1) * 8
	if err := beginTransmission("fsk", req.Message, bitsTotal, req.Units); err != nil {
		http.Error(w, err.Error(), 409)
		return
	}

	go func() {
		carrier, done := recordedCarrier("fsk")
		tx := &modem.Transmitter{
			Carrier: &progressCarrier{inner: carrier},
			Units:   req.Units,
		}
		err := tx.TransmitFrame([]byte(req.Message), params)
		done()
		endTransmission(err)
	}()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"status":  snapshotStatus(),
	})
}

func handleTransmitStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	engine.Cancel()
	log.Println("Transmission cancel requested")

	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// Recording handlers

func handleRecordStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.Filename == "" {
		req.Filename = fmt.Sprintf("%s_%s.parquet",
			hostnameOrUnknown(), time.Now().Format("20060102_150405"))
	}

	serverState.mu.Lock()
	serverState.Recording = true
	serverState.RecordingFile = req.Filename
	serverState.mu.Unlock()

	log.Printf("Recording armed: %s", req.Filename)
	broadcastStatus()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"filename": req.Filename,
	})
}

func handleRecordStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	serverState.mu.Lock()
	serverState.Recording = false
	file := serverState.RecordingFile
	serverState.RecordingFile = ""
	serverState.mu.Unlock()

	log.Printf("Recording disarmed (was %s)", file)
	broadcastStatus()

	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

func handleRecordStatus(w http.ResponseWriter, r *http.Request) {
	serverState.mu.RLock()
	defer serverState.mu.RUnlock()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"recording": serverState.Recording,
		"filename":  serverState.RecordingFile,
	})
}

// Transmission lifecycle

func beginTransmission(mode, message string, bitsTotal, units int) error {
	serverState.mu.Lock()
	defer serverState.mu.Unlock()

	if serverState.Transmitting {
		return errors.New("a transmission is already in progress")
	}

	engine.Reset()
	serverState.Transmitting = true
	serverState.Mode = mode
	serverState.Message = message
	serverState.BitsSent = 0
	serverState.BitsTotal = bitsTotal
	serverState.Units = units
	serverState.StartedAt = time.Now()

	go broadcastStatus()
	return nil
}

func endTransmission(err error) {
	if err != nil {
		log.Printf("Transmission ended: %v", err)
	}

	serverState.mu.Lock()
	serverState.Transmitting = false
	serverState.SessionID = ""
	serverState.mu.Unlock()

	broadcastStatus()
}

// recordedCarrier returns the carrier chain for one transmission. When
// recording is armed it wires a SessionRecorder in front of the engine and
// returns its Close as the cleanup func.
func recordedCarrier(mode string) (modem.Carrier, func()) {
	serverState.mu.Lock()
	recording := serverState.Recording
	file := serverState.RecordingFile
	serverState.mu.Unlock()

	if !recording {
		return engine, func() {}
	}

	rec, err := NewSessionRecorder(file, mode, engine)
	if err != nil {
		log.Printf("Recording disabled: %v", err)
		return engine, func() {}
	}

	serverState.mu.Lock()
	serverState.SessionID = rec.SessionID
	serverState.mu.Unlock()

	return rec, func() {
		if err := rec.Close(); err != nil {
			log.Printf("Recording close: %v", err)
		} else {
			log.Printf("Recording saved: %s (session %s)", file, rec.SessionID)
		}
	}
}

// progressCarrier counts bits as they go out and pushes progress updates to
// connected clients.
type progressCarrier struct {
	inner modem.Carrier
}

func (p *progressCarrier) PlayWaveform(spec oscillator.WaveformSpec) error {
	if err := p.inner.PlayWaveform(spec); err != nil {
		return err
	}

	serverState.mu.Lock()
	serverState.BitsSent++
	sent, total := serverState.BitsSent, serverState.BitsTotal
	serverState.mu.Unlock()

	broadcastJSON(map[string]interface{}{
		"type":       "progress",
		"bits_sent":  sent,
		"bits_total": total,
	})
	return nil
}
