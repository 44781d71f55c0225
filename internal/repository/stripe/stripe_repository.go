package stripe

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type StripeConfig struct {
	StripeApi string
	StripeUrl string
}

type StripeRepository struct {
	stripeConfig StripeConfig
	client       *http.Client
}

func NewStripeRepository(cfg StripeConfig) *StripeRepository {
	return &StripeRepository{
		stripeConfig: cfg,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent opens a payment intent for amountCents and returns the client
// secret the frontend needs to confirm the charge. externalID rides along in
// the intent metadata and comes back on the confirmation webhook.
func (r *StripeRepository) CreateIntent(amountCents int64, email, externalID string) (string, error) {
	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", amountCents))
	form.Set("currency", "usd")
	form.Set("receipt_email", email)
	form.Set("metadata[external_id]", externalID)

	req, err := http.NewRequest(http.MethodPost, r.stripeConfig.StripeUrl+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(r.stripeConfig.StripeApi, "")

	res, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var intent intentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return "", err
	}

	if intent.Error != nil {
		return "", fmt.Errorf("stripe: %s", intent.Error.Message)
	}

	if intent.ClientSecret == "" {
		return "", fmt.Errorf("stripe: empty client secret (status %d)", res.StatusCode)
	}

	return intent.ClientSecret, nil
}
