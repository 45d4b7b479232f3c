package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Smoke-test client: books one appointment through the HTTP API and prints
// the status. Re-running with -idempotency-key replays the stored response.
func main() {
	var (
		baseURL  = flag.String("base-url", getenv("BASE_URL", "http://localhost:8080"), "server base url")
		barberID = flag.String("barber-id", getenv("BARBER_ID", ""), "barber to book")
		service  = flag.String("service", getenv("SERVICE", "Haircut"), "service name")
		date     = flag.String("date", getenv("DATE", ""), "date (YYYY-MM-DD)")
		slot     = flag.String("time", getenv("TIME", "10:00"), "slot time (HH:MM)")
		name     = flag.String("name", getenv("CUSTOMER_NAME", "Smoke Test"), "customer name")
		email    = flag.String("email", getenv("CUSTOMER_EMAIL", "smoke@example.com"), "customer email")
		idemKey  = flag.String("idempotency-key", "", "idempotency key (random when empty)")
	)
	flag.Parse()

	if strings.TrimSpace(*barberID) == "" {
		fatal("BARBER_ID is required")
	}
	if strings.TrimSpace(*date) == "" {
		fatal("DATE is required")
	}

	key := *idemKey
	if key == "" {
		key = uuid.NewString()
	}

	payload, err := json.Marshal(map[string]string{
		"barber_id":      *barberID,
		"service":        *service,
		"date":           *date,
		"time":           *slot,
		"customer_name":  *name,
		"customer_email": *email,
	})
	if err != nil {
		fatal(err.Error())
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*baseURL, "/")+"/api/v1/bookings", bytes.NewReader(payload))
	if err != nil {
		fatal(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d idempotency_key=%s\n%s\n", resp.StatusCode, key, strings.TrimSpace(string(body)))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
