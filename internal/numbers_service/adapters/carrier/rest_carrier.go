package carrier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
)

// CarrierError is a non-2xx answer from the carrier API.
type CarrierError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *CarrierError) Error() string {
	return fmt.Sprintf("carrier returned HTTP %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// RESTCarrier talks to a Twilio-compatible REST API with HTTP basic auth.
type RESTCarrier struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
}

func NewRESTCarrier(logger *slog.Logger, apiURL, accountSID, authToken string, httpClient *http.Client) *RESTCarrier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RESTCarrier{
		logger:     logger.With("carrier", "rest"),
		httpClient: httpClient,
		baseURL:    strings.TrimRight(apiURL, "/") + "/Accounts/" + url.PathEscape(accountSID),
		accountSID: accountSID,
		authToken:  authToken,
	}
}

func (c *RESTCarrier) Name() string { return "rest" }

type capabilities struct {
	Voice bool `json:"voice"`
	SMS   bool `json:"SMS"`
	MMS   bool `json:"MMS"`
}

type availableNumbersResponse struct {
	AvailablePhoneNumbers []struct {
		PhoneNumber  string       `json:"phone_number"`
		Capabilities capabilities `json:"capabilities"`
	} `json:"available_phone_numbers"`
}

type incomingNumberResponse struct {
	SID          string       `json:"sid"`
	PhoneNumber  string       `json:"phone_number"`
	Capabilities capabilities `json:"capabilities"`
}

func (c *RESTCarrier) SearchAvailable(ctx context.Context, criteria domain.SearchCriteria) (_ []domain.AvailableNumber, err error) {
	defer observe(c.Name(), "search", time.Now(), &err)

	kind := "Local"
	if criteria.Type == domain.NumberTypeTollFree {
		kind = "TollFree"
	}
	params := url.Values{}
	if criteria.Limit > 0 {
		params.Set("PageSize", strconv.Itoa(criteria.Limit))
	}
	if criteria.Prefix != "" {
		if criteria.Type == domain.NumberTypeLocal && len(criteria.Prefix) == 3 {
			params.Set("AreaCode", criteria.Prefix)
		} else {
			params.Set("Contains", criteria.Prefix+"*")
		}
	}
	endpoint := fmt.Sprintf("%s/AvailablePhoneNumbers/%s/%s.json", c.baseURL, url.PathEscape(criteria.Country), kind)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create carrier search request: %w", err)
	}
	var resp availableNumbersResponse
	if err := c.do(req, &resp); err != nil {
		c.logger.ErrorContext(ctx, "Carrier search failed", "error", err, "country", criteria.Country, "type", criteria.Type)
		return nil, err
	}

	out := make([]domain.AvailableNumber, 0, len(resp.AvailablePhoneNumbers))
	for _, n := range resp.AvailablePhoneNumbers {
		out = append(out, domain.AvailableNumber{
			E164: n.PhoneNumber, Voice: n.Capabilities.Voice, SMS: n.Capabilities.SMS, MMS: n.Capabilities.MMS,
		})
	}
	c.logger.DebugContext(ctx, "Carrier search returned numbers", "count", len(out), "requested", criteria.Limit)
	return out, nil
}

func (c *RESTCarrier) Purchase(ctx context.Context, pr domain.PurchaseRequest) (_ *domain.PurchasedNumber, err error) {
	defer observe(c.Name(), "purchase", time.Now(), &err)

	form := url.Values{}
	form.Set("PhoneNumber", pr.E164)
	if pr.VoiceURL != "" {
		form.Set("VoiceUrl", pr.VoiceURL)
	}
	if pr.SMSURL != "" {
		form.Set("SmsUrl", pr.SMSURL)
	}
	if pr.FriendlyName != "" {
		form.Set("FriendlyName", pr.FriendlyName)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/IncomingPhoneNumbers.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create carrier purchase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp incomingNumberResponse
	if err := c.do(req, &resp); err != nil {
		c.logger.WarnContext(ctx, "Carrier purchase failed", "error", err, "number", pr.E164)
		return nil, err
	}
	if resp.SID == "" {
		return nil, errors.New("carrier purchase response has no sid")
	}
	c.logger.InfoContext(ctx, "Purchased number from carrier", "number", resp.PhoneNumber, "sid", resp.SID)
	return &domain.PurchasedNumber{
		SID: resp.SID, E164: resp.PhoneNumber,
		Voice: resp.Capabilities.Voice, SMS: resp.Capabilities.SMS, MMS: resp.Capabilities.MMS,
	}, nil
}

// Release gives a number back to the carrier. A number the carrier no longer knows counts as released.
func (c *RESTCarrier) Release(ctx context.Context, sid string) (err error) {
	defer observe(c.Name(), "release", time.Now(), &err)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/IncomingPhoneNumbers/%s.json", c.baseURL, url.PathEscape(sid)), nil)
	if err != nil {
		return fmt.Errorf("failed to create carrier release request: %w", err)
	}
	err = c.do(req, nil)
	var cerr *CarrierError
	if errors.As(err, &cerr) && cerr.StatusCode == http.StatusNotFound {
		c.logger.WarnContext(ctx, "Carrier does not know number; treating as released", "sid", sid)
		return nil
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Carrier release failed", "error", err, "sid", sid)
		return err
	}
	c.logger.InfoContext(ctx, "Released number to carrier", "sid", sid)
	return nil
}

func (c *RESTCarrier) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("carrier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read carrier response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cerr := &CarrierError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, cerr); jsonErr != nil || cerr.Message == "" {
			cerr.Message = strings.TrimSpace(string(body))
		}
		return cerr
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode carrier response: %w", err)
	}
	return nil
}
