package cloudinary

import (
	"net/url"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/stretchr/testify/require"
)

func TestNewClientFromParams_NotConfigured(t *testing.T) {
	_, err := NewClientFromParams("", "key", "secret", "fwf-posts")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSignUpload(t *testing.T) {
	c, err := NewClientFromParams("demo", "key123", "secret456", "fwf-posts")
	require.NoError(t, err)
	impl := c.(*clientImpl)
	impl.now = func() time.Time { return time.Unix(1700000000, 0) }

	sig, err := c.SignUpload("")
	require.NoError(t, err)
	require.Equal(t, "fwf-posts", sig.Folder)
	require.Equal(t, int64(1700000000), sig.Timestamp)
	require.Equal(t, "key123", sig.APIKey)
	require.Equal(t, "demo", sig.CloudName)

	params := url.Values{}
	params.Set("folder", "fwf-posts")
	params.Set("timestamp", "1700000000")
	want, err := api.SignParameters(params, "secret456")
	require.NoError(t, err)
	require.Equal(t, want, sig.Signature)
}

func TestBuildOptimizedImageURL(t *testing.T) {
	require.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_1200,c_fill/fwf-posts/abc",
		BuildOptimizedImageURL("demo", "fwf-posts/abc", 0))
}
