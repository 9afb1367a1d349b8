package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"btl-quote/domain"
)

const (
	EncodingJSON = "json"
	EncodingForm = "form"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+?\.[^\s@]+$`)

// SubmissionService prices a quote and delivers it to the lead webhook.
type SubmissionService struct {
	quotes     *QuoteService
	httpClient *fasthttp.Client
	webhookURL string
	timeout    time.Duration
	log        *logrus.Logger

	now   func() time.Time
	newID func() string
}

func NewSubmissionService(quotes *QuoteService, webhookURL string, timeout time.Duration, log *logrus.Logger) *SubmissionService {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &SubmissionService{
		quotes: quotes,
		httpClient: &fasthttp.Client{
			Name:         "btl-quote",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		webhookURL: webhookURL,
		timeout:    timeout,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Submit validates the client, prices the quote and posts it once as JSON.
// When that fails it posts once more form-encoded. There are no retries.
func (s *SubmissionService) Submit(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResult, error) {
	if err := ValidateClient(req.Client); err != nil {
		return domain.SubmitResult{}, err
	}

	quote, err := s.quotes.quote(ctx, &req.Quote)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if !quote.Quotable || quote.Best == nil {
		return domain.SubmitResult{}, fmt.Errorf("%w: complete the calculation fields before sending", ErrNotQuotable)
	}
	if s.webhookURL == "" {
		return domain.SubmitResult{}, fmt.Errorf("%w: no webhook configured", ErrDeliveryFailed)
	}

	id := fmt.Sprintf("BTL-%s-%s", req.Quote.PropertyCategory, s.newID())
	payload := s.buildPayload(id, req, quote)
	logger := s.log.WithField("requestId", id)

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("encode payload: %w", err)
	}
	jsonErr := s.post(ctx, "application/json", body)
	if jsonErr == nil {
		logger.Info("quote delivered")
		return domain.SubmitResult{RequestID: id, Encoding: EncodingJSON}, nil
	}
	logger.WithError(jsonErr).Warn("json delivery failed, retrying form-encoded")

	formErr := s.post(ctx, "application/x-www-form-urlencoded;charset=UTF-8", []byte(encodeForm(payload)))
	if formErr == nil {
		logger.Info("quote delivered form-encoded")
		return domain.SubmitResult{RequestID: id, Encoding: EncodingForm}, nil
	}
	logger.WithError(formErr).Error("quote delivery failed")

	return domain.SubmitResult{}, fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(jsonErr, formErr))
}

// ValidateClient requires every client field, a phone of 10 to 15 digits
// and a plausible email address.
func ValidateClient(c domain.Client) error {
	name := strings.TrimSpace(c.Name)
	phone := strings.TrimSpace(c.Phone)
	email := strings.TrimSpace(c.Email)
	if name == "" || phone == "" || email == "" {
		return fmt.Errorf("%w: complete all client fields", ErrInvalidClient)
	}

	digits := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "").Replace(phone)
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		return fmt.Errorf("%w: phone must have %d to %d digits", ErrInvalidClient, MinPhoneDigits, MaxPhoneDigits)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: phone must be numeric", ErrInvalidClient)
		}
	}

	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", ErrInvalidClient)
	}
	return nil
}

type columnPayload struct {
	FeePercent string `json:"feePercent"`
	domain.ColumnResult
}

// buildPayload flattens the quote into the webhook's field set. Criteria
// answers are top-level fields; fixed fields take precedence on a clash.
func (s *SubmissionService) buildPayload(id string, req domain.SubmitRequest, quote domain.QuoteResult) map[string]any {
	q := req.Quote
	payload := make(map[string]any, len(q.Criteria)+32)
	for k, v := range q.Criteria {
		payload[k] = v
	}

	columns := make([]columnPayload, 0, len(quote.Columns))
	for _, c := range quote.Columns {
		columns = append(columns, columnPayload{FeePercent: c.ColumnKey, ColumnResult: c})
	}

	fields := map[string]any{
		"requestId":            id,
		"clientName":           strings.TrimSpace(req.Client.Name),
		"clientPhone":          strings.TrimSpace(req.Client.Phone),
		"clientEmail":          strings.TrimSpace(req.Client.Email),
		"propertyType":         string(q.PropertyCategory),
		"productGroup":         string(quote.ProductGroup),
		"productType":          q.ProductType,
		"isRetention":          q.Retention,
		"retentionLtv":         q.RetentionBand,
		"propertyValue":        amountValue(q.Loan.PropertyValue),
		"monthlyRent":          amountValue(q.Loan.MonthlyRent),
		"loanTypeRequired":     string(q.Loan.Mode),
		"specificNetLoan":      amountValue(q.Loan.SpecificNetLoan),
		"specificGrossLoan":    amountValue(q.Loan.SpecificGrossLoan),
		"specificLTV":          amountValue(q.Loan.SpecificLTV),
		"tier":                 quote.TierLabel,
		"bestSummary":          quote.Best,
		"allColumnData":        columns,
		"basicGrossColumnData": quote.Basic,
		"submissionTimestamp":  s.now().UTC().Format(time.RFC3339),
		"revertRate":           quote.Info.RevertRate,
		"totalTerm":            quote.Info.TotalTerm,
		"erc":                  quote.Info.ERC,
		"currentMVR":           quote.Info.CurrentMVR,
		"standardBBR":          quote.Info.StandardBBR,
		"procFeePct":           quote.ProcFeePct,
		"brokerFeePct":         amountValue(q.BrokerFeePct),
		"brokerFeeFlat":        amountValue(q.BrokerFeeFlat),
	}
	for k, v := range fields {
		payload[k] = v
	}
	return payload
}

func amountValue(a domain.Amount) any {
	if !a.Valid {
		return nil
	}
	return a.Value
}

// encodeForm writes scalars as text, nil as the empty string and anything
// structured as its JSON encoding.
func encodeForm(payload map[string]any) string {
	form := url.Values{}
	for k, v := range payload {
		form.Set(k, formValue(v))
	}
	return form.Encode()
}

func formValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func (s *SubmissionService) post(ctx context.Context, contentType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.SetBodyRaw(body)

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("webhook responded with status %d", code)
	}
	return nil
}
