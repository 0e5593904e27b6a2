// webhookclient exercises a running bridge locally: it registers a call
// session, then posts a recording-finished webhook for it.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "bridge base URL")
	room := flag.String("room", "call-+15551234567", "room name")
	egress := flag.String("egress", fmt.Sprintf("EG_%d", time.Now().Unix()), "egress id")
	location := flag.String("location", "s3://Recordings/rooms/call-+15551234567.ogg", "recording location")
	phone := flag.String("phone", "+15551234567", "caller phone number")
	first := flag.String("first", "Test", "caller first name")
	last := flag.String("last", "Caller", "caller last name")
	flag.Parse()

	post(*server+"/v1/calls", map[string]any{
		"roomName":    *room,
		"phoneNumber": *phone,
		"firstName":   *first,
		"lastName":    *last,
	})

	post(*server+"/v1/webhooks", map[string]any{
		"event": "egress_ended",
		"egressInfo": map[string]any{
			"egressId": *egress,
			"roomName": *room,
			"fileResults": []map[string]any{
				{"filename": "call.ogg", "location": *location},
			},
		},
	})
}

func post(url string, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	log.Printf("POST %s -> %d %s", url, resp.StatusCode, bytes.TrimSpace(out))
}
