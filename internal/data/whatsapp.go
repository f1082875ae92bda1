package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"slack-wa-relay/internal/biz/repo"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v20.0"

// WhatsAppConfig contains WhatsApp Cloud API configuration.
type WhatsAppConfig struct {
	Token         string
	PhoneNumberID string
	TemplateName  string
	TemplateLang  string
	BaseURL       string        // defaults to the Graph API endpoint
	Timeout       time.Duration // per-request HTTP timeout
}

// WhatsAppClient implements repo.DestinationRepo against the WhatsApp Cloud
// API (Graph API message and media endpoints).
type WhatsAppClient struct {
	cfg  WhatsAppConfig
	http *http.Client
	log  zerolog.Logger
}

// NewWhatsAppClient creates a WhatsApp Cloud API client.
func NewWhatsAppClient(cfg WhatsAppConfig, log zerolog.Logger) *WhatsAppClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGraphBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &WhatsAppClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With().Str("component", "whatsapp").Logger(),
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type mediaRef struct {
	ID       string `json:"id"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type imagePayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Image            mediaRef `json:"image"`
}

type documentPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Document         mediaRef `json:"document"`
}

type templatePayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         templateBody `json:"template"`
}

type templateBody struct {
	Name     string       `json:"name"`
	Language templateLang `json:"language"`
}

type templateLang struct {
	Code string `json:"code"`
}

// SendText delivers a plain text message.
func (c *WhatsAppClient) SendText(ctx context.Context, to, body string) error {
	return c.postMessage(ctx, textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
}

// SendImage delivers a previously uploaded image.
func (c *WhatsAppClient) SendImage(ctx context.Context, to, mediaID, caption string) error {
	return c.postMessage(ctx, imagePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "image",
		Image:            mediaRef{ID: mediaID, Caption: caption},
	})
}

// SendDocument delivers a previously uploaded document.
func (c *WhatsAppClient) SendDocument(ctx context.Context, to, mediaID, filename, caption string) error {
	return c.postMessage(ctx, documentPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "document",
		Document:         mediaRef{ID: mediaID, Caption: caption, Filename: filename},
	})
}

// SendTemplate sends the configured handshake template.
func (c *WhatsAppClient) SendTemplate(ctx context.Context, to string) error {
	return c.postMessage(ctx, templatePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: templateBody{
			Name:     c.cfg.TemplateName,
			Language: templateLang{Code: c.cfg.TemplateLang},
		},
	})
}

// UploadMedia uploads a binary payload to the media endpoint and returns the
// opaque handle for subsequent sends.
func (c *WhatsAppClient) UploadMedia(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", fmt.Errorf("%w: %v", repo.ErrUploadFailed, err)
	}
	if err := form.WriteField("type", mimeType); err != nil {
		return "", fmt.Errorf("%w: %v", repo.ErrUploadFailed, err)
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repo.ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", repo.ErrUploadFailed, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", repo.ErrUploadFailed, err)
	}

	url := fmt.Sprintf("%s/%s/media", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repo.ErrUploadFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repo.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", repo.ErrUploadFailed, resp.StatusCode, body)
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.ID == "" {
		return "", fmt.Errorf("%w: unexpected response: %s", repo.ErrUploadFailed, body)
	}
	return parsed.ID, nil
}

// postMessage posts a payload to the messages endpoint, converting non-2xx
// responses into *repo.SendError with the platform's error code.
func (c *WhatsAppClient) postMessage(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return sendErrorFromResponse(resp.StatusCode, body)
	}
	return nil
}

// sendErrorFromResponse extracts the Graph API error code from an error
// response body.
func sendErrorFromResponse(status int, body []byte) *repo.SendError {
	var parsed struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &parsed)
	return &repo.SendError{
		StatusCode: status,
		Code:       parsed.Error.Code,
		Body:       string(body),
	}
}

var _ repo.DestinationRepo = (*WhatsAppClient)(nil)
