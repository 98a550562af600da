// Keep-alive pinger for the hosted recorder. Meant to run from cron; it
// exits zero whether the app was awake or not, so a sleeping app never
// marks the cron job as failed.
package main

import (
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	url := os.Getenv("RECORDER_APP_URL")
	if url == "" {
		url = "http://localhost:8080"
	}
	url = url + "/healthz"

	log.Printf("main(): starting wake-up routine for: %s", url)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		log.Printf("main(): ping failed, app may be rebooting: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		log.Printf("main(): app is awake")
	} else {
		log.Printf("main(): app responded with status %s", resp.Status)
	}
}
