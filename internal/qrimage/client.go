// Package qrimage реализует клиент внешнего сервиса генерации
// изображений QR-кодов. Сервис принимает произвольную строку
// и возвращает ссылку на изображение с её кодировкой.
package qrimage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client клиент внешнего генератора изображений QR-кодов.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт новый клиент генератора изображений.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RenderURL возвращает ссылку на изображение QR-кода для переданных данных.
// Сам генератор отдаёт изображение по GET-запросу, поэтому достаточно
// проверить доступность сервиса и вернуть собранный URL.
func (c *Client) RenderURL(ctx context.Context, data string) (string, error) {
	const op = "qrimage.RenderURL"

	imageURL := fmt.Sprintf("%s?size=250x250&data=%s", c.baseURL, url.QueryEscape(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %w", op, errors.New("unexpected status: "+resp.Status))
	}
	return imageURL, nil
}
