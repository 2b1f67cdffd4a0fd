// Command ws_bridge is a development front end for the bridge. It stands in
// for the production backend: each WebSocket message is a bridge invocation
// ({"command": "...", "args": [...]}), answered by spawning one bridge
// process and relaying its stdout JSON back over the socket. Stderr
// diagnostics are forwarded as separate messages so a browser console can
// show them.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/exec"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type invocation struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type envelope struct {
	Type string          `json:"type"` // "result", "stderr" or "error"
	Data json.RawMessage `json:"data,omitempty"`
	Text string          `json:"text,omitempty"`
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	bridgeBin := flag.String("bridge", "./bridge", "path to the bridge binary")
	flag.Parse()

	http.HandleFunc("/ws", handleWS(*bridgeBin))

	fmt.Printf("WebSocket server running on ws://localhost%s/ws\n", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func handleWS(bridgeBin string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("Upgrade error:", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Println("WS read error:", err)
				return
			}

			var inv invocation
			if err := json.Unmarshal(msg, &inv); err != nil {
				writeEnvelope(conn, envelope{Type: "error", Text: "invalid invocation: " + err.Error()})
				continue
			}
			if inv.Command == "" {
				writeEnvelope(conn, envelope{Type: "error", Text: "missing command"})
				continue
			}

			runInvocation(conn, bridgeBin, inv)
		}
	}
}

// runInvocation spawns one bridge process for the invocation and relays its
// output. One process per command mirrors exactly how the production
// backend consumes the bridge.
func runInvocation(conn *websocket.Conn, bridgeBin string, inv invocation) {
	cmd := exec.Command(bridgeBin, append([]string{inv.Command}, inv.Args...)...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		writeEnvelope(conn, envelope{Type: "error", Text: "could not attach stderr: " + err.Error()})
		return
	}

	if err := cmd.Start(); err != nil {
		writeEnvelope(conn, envelope{Type: "error", Text: "could not start bridge: " + err.Error()})
		return
	}

	// Forward diagnostics line by line while the process runs.
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		writeEnvelope(conn, envelope{Type: "stderr", Text: scanner.Text()})
	}

	if err := cmd.Wait(); err != nil {
		writeEnvelope(conn, envelope{Type: "error", Text: "bridge exited with error: " + err.Error()})
		return
	}

	result := bytes.TrimSpace(stdout.Bytes())
	if !json.Valid(result) {
		writeEnvelope(conn, envelope{Type: "error", Text: "bridge emitted invalid JSON"})
		return
	}
	writeEnvelope(conn, envelope{Type: "result", Data: result})
}

func writeEnvelope(conn *websocket.Conn, env envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Println("marshal error:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Println("WS write error:", err)
	}
}
