// Package httpgateway implements the remote scheduling gateway over the
// publishing service's HTTP API.
package httpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/gateway"
	"github.com/postdeck/postdeck/pkg/models"
	"github.com/postdeck/postdeck/pkg/otelhelper"
)

const defaultTimeout = 15 * time.Second

// Gateway talks to the remote publishing service. Responses with 4xx status
// map to gateway.KindRejected, transport errors and 5xx responses to
// gateway.KindUnavailable.
type Gateway struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
}

func New(baseURL string, logger *slog.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger,
		tracer:  otel.Tracer("postdeck/httpgateway"),
	}
}

func (g *Gateway) CreateScheduledItem(ctx context.Context, req gateway.CreateItemRequest) (models.ScheduledItem, error) {
	const op = "CreateScheduledItem"

	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "gateway.create_scheduled_item",
		attribute.String(otelhelper.PlatformKey, req.Snapshot.Platform),
	)
	defer span.End()

	var item models.ScheduledItem

	err := g.call(ctx, op, http.MethodPost, "/v1/scheduled-items", req, &item)
	if err != nil {
		otelhelper.SetError(span, err)

		return models.ScheduledItem{}, err
	}

	return item, nil
}

func (g *Gateway) RescheduleOne(ctx context.Context, id models.ItemID, newScheduledAt time.Time) error {
	const op = "RescheduleOne"

	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "gateway.reschedule_one",
		attribute.String(otelhelper.ItemIDKey, id.String()),
	)
	defer span.End()

	body := map[string]any{"new_scheduled_at": newScheduledAt}
	path := "/v1/scheduled-items/" + url.PathEscape(id.Value()) + "/reschedule"

	err := g.call(ctx, op, http.MethodPost, path, body, nil)
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return err
}

func (g *Gateway) RescheduleMany(ctx context.Context, reqs []gateway.RescheduleRequest) error {
	const op = "RescheduleMany"

	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "gateway.reschedule_many",
		attribute.Int(otelhelper.BatchSizeKey, len(reqs)),
	)
	defer span.End()

	body := map[string]any{"items": reqs}

	err := g.call(ctx, op, http.MethodPost, "/v1/scheduled-items/reschedule", body, nil)
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return err
}

func (g *Gateway) ListScheduledItems(ctx context.Context, from, to calendar.Day) ([]models.ScheduledItem, error) {
	const op = "ListScheduledItems"

	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "gateway.list_scheduled_items")
	defer span.End()

	path := fmt.Sprintf("/v1/scheduled-items?from=%s&to=%s", from, to)

	var out struct {
		Items []models.ScheduledItem `json:"items"`
	}

	err := g.call(ctx, op, http.MethodGet, path, nil, &out)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return out.Items, nil
}

func (g *Gateway) call(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return gateway.NewRejected(op, fmt.Errorf("encoding request: %w", err))
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return gateway.NewUnavailable(op, err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return gateway.NewUnavailable(op, err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.Warn("Failed to close gateway response body", "error", err)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))

		if resp.StatusCode < http.StatusInternalServerError {
			return gateway.NewRejected(op, cause)
		}

		return gateway.NewUnavailable(op, cause)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return gateway.NewUnavailable(op, fmt.Errorf("decoding response: %w", err))
	}

	return nil
}
