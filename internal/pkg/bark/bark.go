package bark

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/folio-space/folio/internal/pkg/mail"
)

const (
	defaultServer   = "https://day.app"
	defaultThrottle = 10 * time.Minute
	maxBodyRunes    = 200
)

// Service sends iOS push notifications through a Bark server.
type Service struct {
	key        string
	server     string
	siteTitle  string
	httpClient *http.Client

	mu         sync.Mutex
	lastPushAt map[string]time.Time
	throttle   time.Duration
}

// New returns a Service for the device key. An empty key yields a disabled
// Service whose methods do nothing.
func New(key, server, siteTitle string) *Service {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		server = defaultServer
	}
	return &Service{
		key:        strings.TrimSpace(key),
		server:     server,
		siteTitle:  siteTitle,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		lastPushAt: make(map[string]time.Time),
		throttle:   defaultThrottle,
	}
}

func (s *Service) Enabled() bool { return s != nil && s.key != "" }

type pushPayload struct {
	DeviceKey string `json:"device_key"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Group     string `json:"group,omitempty"`
}

// Push sends one notification immediately.
func (s *Service) Push(title, body string) error {
	if !s.Enabled() {
		return errors.New("bark: device key not configured")
	}
	b, err := json.Marshal(pushPayload{
		DeviceKey: s.key,
		Title:     fmt.Sprintf("[%s] %s", s.siteTitle, title),
		Body:      body,
		Group:     s.siteTitle,
	})
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Post(s.server+"/push", "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bark: push failed with %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// SendContactNotify pushes a short preview of a new contact message.
func (s *Service) SendContactNotify(data mail.ContactNotifyData) error {
	if !s.Enabled() {
		return nil
	}
	body := data.Message
	if r := []rune(body); len(r) > maxBodyRunes {
		body = string(r[:maxBodyRunes]) + "..."
	}
	return s.Push("New message from "+data.Name, fmt.Sprintf("%s\n%s", data.Email, body))
}

// ThrottlePush reports a rate-limited client, at most once per throttle
// window for each ip and path pair.
func (s *Service) ThrottlePush(ip, path string) {
	if !s.Enabled() {
		return
	}
	key := ip + "|" + path

	s.mu.Lock()
	if last, ok := s.lastPushAt[key]; ok && time.Since(last) < s.throttle {
		s.mu.Unlock()
		return
	}
	s.lastPushAt[key] = time.Now()
	s.mu.Unlock()

	_ = s.Push("Rate limit hit", fmt.Sprintf("IP: %s Path: %s", ip, path))
}
