package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// ErrNotConfigured is returned when no Cloudinary credentials are set.
var ErrNotConfigured = errors.New("cloudinary is not configured")

// Client uploads task proof photos and signs browser-side uploads.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, publicID string) (*UploadResult, error)
	SignUpload(folder string) (*Signature, error)
}

const (
	ImageWidth = 1200
	ThumbWidth = 300

	imageEager = "q_auto,f_auto,w_300,c_fill"
)

var eagerAsyncFalse = false

type UploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	PublicID     string `json:"public_id"`
}

// Signature is what a browser needs to POST a file straight to Cloudinary.
type Signature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder"`
}

// BuildOptimizedImageURL returns a delivery URL for publicID resized to width.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, width, publicID)
}

type clientImpl struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	uploader  *uploader.API
	now       func() time.Time
}

func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, publicID string) (*UploadResult, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     c.folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, errors.New(result.Error.Message)
	}
	res := &UploadResult{URL: result.SecureURL, PublicID: result.PublicID}
	if len(result.Eager) > 0 {
		res.ThumbnailURL = result.Eager[0].SecureURL
	}
	if res.ThumbnailURL == "" {
		res.ThumbnailURL = BuildOptimizedImageURL(c.cloudName, result.PublicID, ThumbWidth)
	}
	return res, nil
}

// SignUpload signs {folder, timestamp} with the API secret. An empty folder
// uses the configured one.
func (c *clientImpl) SignUpload(folder string) (*Signature, error) {
	if folder == "" {
		folder = c.folder
	}
	ts := c.now().Unix()
	params := url.Values{}
	params.Set("folder", folder)
	params.Set("timestamp", strconv.FormatInt(ts, 10))
	sig, err := api.SignParameters(params, c.apiSecret)
	if err != nil {
		return nil, err
	}
	return &Signature{
		Signature: sig,
		Timestamp: ts,
		APIKey:    c.apiKey,
		CloudName: c.cloudName,
		Folder:    folder,
	}, nil
}

// NewClientFromParams builds a Client; it returns ErrNotConfigured when any
// credential is empty.
func NewClientFromParams(cloudName, apiKey, apiSecret, folder string) (Client, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		uploader:  up,
		now:       time.Now,
	}, nil
}
