package service

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// AnalyticsService posts named events to an external sink. Strictly
// best-effort: failures are logged and never propagated to callers.
type AnalyticsService struct {
	endpoint string
	client   *http.Client
}

func NewAnalyticsService(endpoint string) *AnalyticsService {
	return &AnalyticsService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type analyticsEvent struct {
	Event      string                 `json:"event"`
	Key        string                 `json:"key"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  int64                  `json:"timestamp"`
}

// Track fires an event asynchronously. A nil service or empty endpoint
// disables tracking.
func (s *AnalyticsService) Track(event, key string, props map[string]interface{}) {
	if s == nil || s.endpoint == "" {
		return
	}
	payload, err := json.Marshal(analyticsEvent{
		Event:      event,
		Key:        key,
		Properties: props,
		Timestamp:  time.Now().Unix(),
	})
	if err != nil {
		log.Printf("[analytics] failed to marshal event %s: %v", event, err)
		return
	}
	go func() {
		resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(payload))
		if err != nil {
			log.Printf("[analytics] failed to send event %s: %v", event, err)
			return
		}
		resp.Body.Close()
	}()
}
