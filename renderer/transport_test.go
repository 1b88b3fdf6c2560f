package renderer

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/deepnoodle-ai/wonton/assert"
)

// fakeRenderer echoes every request back as a successful response,
// standing in for the out-of-scope external renderer process.
func fakeRenderer(t *testing.T, conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return
		}
		resp := Response{RetCode: 200, RequestID: msg.RequestID, ResultValue: "handle-1"}
		line, _ := json.Marshal(resp)
		line = append(line, '\n')
		if _, err := conn.Write(line); err != nil {
			return
		}
	}
}

func TestBridgeCallSuccess(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	go fakeRenderer(t, server)

	transport := NewStdioTransport(client)
	bridge := NewBridge(transport, time.Second)

	resp, err := bridge.Call(context.Background(), TargetSession, "s1", OpCreatePlainWindow, map[string]string{"title": "main"})
	assert.Nil(t, err)
	assert.Equal(t, resp.ResultValue, "handle-1")
}

func TestBridgeCallRefused(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	go func() {
		scanner := bufio.NewScanner(server)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			var msg Message
			json.Unmarshal(scanner.Bytes(), &msg)
			resp := Response{RetCode: 500, RequestID: msg.RequestID}
			line, _ := json.Marshal(resp)
			line = append(line, '\n')
			server.Write(line)
		}
	}()

	transport := NewStdioTransport(client)
	bridge := NewBridge(transport, time.Second)
	_, err := bridge.Call(context.Background(), TargetSession, "s1", OpCreatePlainWindow, nil)
	assert.True(t, err != nil)
}
