package notification

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type MailjetConfig struct {
	MailjetBaseURL           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type MailjetRepository struct {
	mailjetConfig MailjetConfig
	client        *http.Client
}

func NewMailjetRepository(cfg MailjetConfig) *MailjetRepository {
	return &MailjetRepository{
		mailjetConfig: cfg,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

type mailjetResponse struct {
	Messages []struct {
		Status string `json:"Status"`
	} `json:"Messages"`
}

func (r *MailjetRepository) SendEmail(toName, toEmail, subject, message string) error {
	payload := map[string]interface{}{
		"Messages": []map[string]interface{}{
			{
				"From": map[string]string{
					"Email": r.mailjetConfig.MailjetSenderEmail,
					"Name":  r.mailjetConfig.MailjetSenderName,
				},
				"To": []map[string]string{
					{"Email": toEmail, "Name": toName},
				},
				"Subject":  subject,
				"HTMLPart": message,
			},
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, r.mailjetConfig.MailjetBaseURL+"/v3.1/send", strings.NewReader(string(raw)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.mailjetConfig.MailjetBasicAuthUsername, r.mailjetConfig.MailjetBasicAuthPassword)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	var parsed mailjetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("mailjet: unexpected response (status %d)", res.StatusCode)
	}

	for _, msg := range parsed.Messages {
		if msg.Status != "success" {
			return fmt.Errorf("mailjet: send status %q", msg.Status)
		}
	}

	return nil
}
