package retry

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Policy decides which failed round trips deserve another attempt. The
// conditions follow Envoy's retry_on names.
type Policy struct {
	serverError    bool
	gatewayError   bool
	connectFailure bool
	retriable4xx   bool
	statusCodes    map[int]struct{}
}

func DefaultPolicy() *Policy {
	return &Policy{
		gatewayError:   true,
		connectFailure: true,
		retriable4xx:   true,
	}
}

// ParsePolicy reads a comma separated list of 5xx, gateway-error,
// connect-failure, retriable-4xx and plain status codes.
func ParsePolicy(s string) (*Policy, error) {
	p := &Policy{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		switch field {
		case "":
		case "5xx":
			p.serverError = true
		case "gateway-error":
			p.gatewayError = true
		case "connect-failure":
			p.connectFailure = true
		case "retriable-4xx":
			p.retriable4xx = true
		default:
			code, err := strconv.Atoi(field)
			if err != nil {
				return nil, xerrors.Errorf("invalid retry condition: %s", field)
			}
			if p.statusCodes == nil {
				p.statusCodes = map[int]struct{}{}
			}
			p.statusCodes[code] = struct{}{}
		}
	}
	return p, nil
}

func (p *Policy) RetryResponse(response *http.Response) bool {
	code := response.StatusCode
	switch {
	case p.serverError && code >= 500 && code < 600:
		return true
	case p.gatewayError && code >= 502 && code <= 504:
		return true
	case p.retriable4xx && code == http.StatusConflict:
		return true
	}

	_, ok := p.statusCodes[code]
	return ok
}

// RetryError reports whether err looks like the upstream never answered.
func (p *Policy) RetryError(err error) bool {
	if !p.connectFailure && !p.serverError {
		return false
	}

	type temporary interface{ Temporary() bool }
	var terr temporary
	if errors.As(err, &terr) && terr.Temporary() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
