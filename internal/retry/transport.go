package retry

import (
	"io"
	"net/http"
	"time"
)

// Transport replays a request while Policy deems the outcome retriable and
// Backoff still allows another attempt. Requests with a body are replayed
// only when GetBody is set.
type Transport struct {
	Base    http.RoundTripper
	Backoff Backoff
	Policy  *Policy
}

func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	current := request
	for attempt := uint(0); ; attempt++ {
		response, err := t.base().RoundTrip(current)
		if !t.shouldRetry(request, response, err) {
			return response, err
		}

		wait, exhausted := t.backoff().Next(attempt)
		if exhausted {
			return response, err
		}
		if response != nil {
			_, _ = io.Copy(io.Discard, response.Body)
			_ = response.Body.Close()
		}

		timer := time.NewTimer(wait)
		select {
		case <-request.Context().Done():
			timer.Stop()
			return nil, request.Context().Err()
		case <-timer.C:
		}

		current, err = rewind(request)
		if err != nil {
			return nil, err
		}
	}
}

func (t *Transport) shouldRetry(request *http.Request, response *http.Response, err error) bool {
	if t.Policy == nil || !replayable(request) {
		return false
	}
	if err != nil {
		return t.Policy.RetryError(err)
	}
	return t.Policy.RetryResponse(response)
}

func replayable(request *http.Request) bool {
	return request.Body == nil || request.Body == http.NoBody || request.GetBody != nil
}

func rewind(request *http.Request) (*http.Request, error) {
	next := request.Clone(request.Context())
	if request.GetBody == nil {
		return next, nil
	}
	body, err := request.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) backoff() Backoff {
	if t.Backoff != nil {
		return t.Backoff
	}
	return Never()
}

// NewClient returns a client whose transport retries with policy and backoff.
func NewClient(base http.RoundTripper, policy *Policy, backoff Backoff, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &Transport{
			Base:    base,
			Backoff: backoff,
			Policy:  policy,
		},
		Timeout: timeout,
	}
}
