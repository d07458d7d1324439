// Package rewards notifies the streak/reward collaborator after a
// successful log or upload. The engine only fires the hook; the
// gamification logic lives elsewhere.
package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const notifyEndpoint = "v1/events"

// Log kinds reported to the reward service.
const (
	KindManualLog  = "manual_log"
	KindSensorSync = "sensor_sync"
)

type Notifier interface {
	NotifyLog(ctx context.Context, userID, kind string) error
}

type Client struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
}

func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		client:  &http.Client{},
		logger:  logger,
		baseURL: baseURL,
	}
}

type logNotification struct {
	UserID    string `json:"userId"`
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
}

// NotifyLog posts one event per successful manual log or upload.
func (c *Client) NotifyLog(ctx context.Context, userID, kind string) error {
	b, err := json.Marshal(&logNotification{
		UserID:    userID,
		Kind:      kind,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	c.logger.Debug("notifying reward service",
		zap.String("userID", userID),
		zap.String("kind", kind),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+notifyEndpoint, bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("reward service rejected notification: %s", resp.Status)
	}

	return nil
}
