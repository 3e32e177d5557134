package ocs

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/internal/log"
	intotel "github.com/talkline/roomsession/internal/otel"
	"github.com/talkline/roomsession/sessions"
)

const (
	pathParticipant = "/ocs/v2.php/apps/spreed/api/v4/room/{token}/participants/active"
	pathRoom        = "/ocs/v2.php/apps/spreed/api/v4/room/{token}"
	pathSettings    = "/ocs/v2.php/apps/spreed/api/v3/signaling/settings"
)

var _ sessions.BackendRoomClient = (*Client)(nil)

// Client calls the Talk room API on behalf of one account. Failures are
// returned as *sessions.StatusError so the coordinator can classify them.
type Client struct {
	http   *resty.Client
	tracer trace.Tracer
	logger *log.Logger
}

func NewClient(cfg *Config, logger *log.Logger) *Client {
	if logger == nil {
		panic("logger is required")
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.User, cfg.AppPassword).
		SetHeader("OCS-APIRequest", "true").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		http:   httpClient,
		tracer: otel.Tracer(intotel.TracerOCS),
		logger: logger,
	}
}

func (c *Client) Join(ctx context.Context, token string) (*sessions.JoinResult, error) {
	var room roomData
	err := c.do(ctx, "join", token, c.http.R().
		SetPathParam("token", token).
		SetBody(joinRequest{Force: true}),
		http.MethodPost, pathParticipant, &room)
	if err != nil {
		return nil, err
	}

	if room.Token == "" {
		room.Token = token
	}
	return &sessions.JoinResult{
		SessionID: room.SessionID,
		Room:      &room.RoomMetadata,
	}, nil
}

func (c *Client) Exit(ctx context.Context, token string) error {
	return c.do(ctx, "exit", token, c.http.R().
		SetPathParam("token", token),
		http.MethodDelete, pathParticipant, nil)
}

func (c *Client) Get(ctx context.Context, token string) (*sessions.RoomMetadata, error) {
	var room roomData
	err := c.do(ctx, "get", token, c.http.R().
		SetPathParam("token", token),
		http.MethodGet, pathRoom, &room)
	if err != nil {
		return nil, err
	}
	return &room.RoomMetadata, nil
}

func (c *Client) GetSignalingSettings(ctx context.Context, token string) (*sessions.SignalingSettings, error) {
	var settings sessions.SignalingSettings
	err := c.do(ctx, "signaling_settings", token, c.http.R().
		SetQueryParam("token", token),
		http.MethodGet, pathSettings, &settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) do(
	ctx context.Context,
	op string,
	token string,
	req *resty.Request,
	method string,
	path string,
	result any,
) error {
	ctx, span := intotel.StartSpan(ctx, c.tracer, "ocs."+op, intotel.TokenAttr(token))
	defer span.End()

	var env envelope
	start := time.Now()
	resp, err := req.
		SetContext(ctx).
		SetResult(&env).
		SetError(&env).
		Execute(method, path)

	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("op", op),
		attribute.Int("status", status),
	))

	if err != nil && status == 0 {
		err = &sessions.StatusError{Err: errors.Wrapf(ErrRequestFailed, err, "%s %s", method, path)}
		intotel.RecordError(span, err)
		c.logger.Debug("OCS request failed", log.String("op", op), log.Token(token), log.Error(err))
		return err
	}

	if resp.IsError() {
		var data errorData
		_ = json.Unmarshal(env.OCS.Data, &data)
		err = &sessions.StatusError{
			StatusCode: status,
			Reason:     data.Error,
			Err:        errors.Newf(ErrStatus, "%s %s: %s", method, path, env.OCS.Meta.Message),
		}
		intotel.RecordError(span, err)
		c.logger.Debug("OCS error response",
			log.String("op", op), log.Token(token), log.Int("status", status), log.String("reason", data.Error))
		return err
	}

	if err != nil {
		// answered, but the body was not an OCS envelope
		err = &sessions.StatusError{
			StatusCode: status,
			Err:        errors.Wrapf(ErrInvalidResponse, err, "%s %s", method, path),
		}
		intotel.RecordError(span, err)
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(env.OCS.Data, result); err != nil {
		err = &sessions.StatusError{
			StatusCode: status,
			Err:        errors.Wrapf(ErrInvalidResponse, err, "%s %s", method, path),
		}
		intotel.RecordError(span, err)
		return err
	}
	return nil
}
