package cmd

import (
	"log/slog"

	"github.com/postdeck/postdeck/pkg/gateway"
	"github.com/postdeck/postdeck/pkg/gateway/httpgateway"
)

func NewGateway(baseURL string, logger *slog.Logger) gateway.RemoteSchedulingGateway {
	return httpgateway.New(baseURL, logger)
}
