// Package inpaint is an outpaint probe backed by a Stable Diffusion WebUI
// compatible img2img endpoint.
package inpaint

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-fitter/pkg/raster"
)

const defaultPrompt = "seamless continuation of the photo background"

type Client struct {
	baseURL    string
	httpClient *http.Client

	Prompt         string
	NegativePrompt string
	Steps          int
	Denoising      float64
}

// img2img request body, only the fields this client sets
type Img2ImgRequest struct {
	InitImages        []string `json:"init_images"`
	Mask              string   `json:"mask"`
	Prompt            string   `json:"prompt"`
	NegativePrompt    string   `json:"negative_prompt,omitempty"`
	Width             int      `json:"width"`
	Height            int      `json:"height"`
	Steps             int      `json:"steps"`
	DenoisingStrength float64  `json:"denoising_strength"`
	MaskBlur          int      `json:"mask_blur"`
	InpaintingFill    int      `json:"inpainting_fill"`
}

type Img2ImgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info,omitempty"`
}

// NewClient returns a client for serverURL. An empty URL yields a client
// that always reports itself unavailable.
func NewClient(serverURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Prompt:    defaultPrompt,
		Steps:     30,
		Denoising: 0.75,
	}
}

func (c *Client) Name() string { return "generative" }

// Outpaint sends canvas and a mask of everything outside content, then
// composites the original content back over the returned image.
func (c *Client) Outpaint(ctx context.Context, canvas *image.NRGBA, content image.Rectangle) (*image.NRGBA, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("no inpaint server configured: %w", raster.ErrProbeUnavailable)
	}
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()

	initB64, err := encodePNG(canvas)
	if err != nil {
		return nil, err
	}
	maskB64, err := encodePNG(buildMask(canvas.Bounds(), content))
	if err != nil {
		return nil, err
	}

	req := Img2ImgRequest{
		InitImages:        []string{initB64},
		Mask:              maskB64,
		Prompt:            c.Prompt,
		NegativePrompt:    c.NegativePrompt,
		Width:             w,
		Height:            h,
		Steps:             c.Steps,
		DenoisingStrength: c.Denoising,
		MaskBlur:          4,
		InpaintingFill:    1,
	}

	respBody, err := c.sendRequest(ctx, "/sdapi/v1/img2img", req)
	if err != nil {
		return nil, err
	}

	var resp Img2ImgResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Images) == 0 {
		return nil, fmt.Errorf("no images in response")
	}

	img, err := decodeImage(resp.Images[0])
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return imaging.Overlay(img, canvas, image.Point{}, 1.0), nil
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", raster.ErrProbeUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s not served", raster.ErrProbeUnavailable, endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// buildMask is white where the server should paint
func buildMask(bounds, content image.Rectangle) *image.NRGBA {
	mask := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	keep := imaging.New(content.Dx(), content.Dy(), color.Black)
	return imaging.Paste(mask, keep, content.Min)
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodeImage(b64 string) (*image.NRGBA, error) {
	// some servers prefix a data URL
	if i := strings.Index(b64, ","); i >= 0 && strings.HasPrefix(b64, "data:") {
		b64 = b64[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return imaging.Clone(img), nil
}
