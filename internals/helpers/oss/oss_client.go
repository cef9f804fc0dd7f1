// internals/helpers/oss/oss_client.go
package helper

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gerejaku_backend/internals/configs"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// ObjectStore is what the branding controller needs from object storage.
type ObjectStore interface {
	PutWebP(ctx context.Context, key string, data []byte) (string, error)
	DeleteByURL(ctx context.Context, publicURL string) error
}

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string
}

func NewOSSServiceFromEnv() (*OSSService, error) {
	endpoint := configs.GetEnv("ALI_OSS_ENDPOINT")
	ak := configs.GetEnv("ALI_OSS_ACCESS_KEY")
	sk := configs.GetEnv("ALI_OSS_SECRET_KEY")
	sts := configs.GetEnv("ALI_OSS_SECURITY_TOKEN")
	bucketName := configs.GetEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if sts != "" {
		client, err = oss.New(endpoint, ak, sk, oss.SecurityToken(sts))
	} else {
		client, err = oss.New(endpoint, ak, sk)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: strings.TrimRight(configs.GetEnv("ALI_OSS_PUBLIC_BASE"), "/"),
	}, nil
}

func (s *OSSService) PutWebP(ctx context.Context, key string, data []byte) (string, error) {
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType("image/webp"),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(data), opts...); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

func (s *OSSService) DeleteByURL(ctx context.Context, publicURL string) error {
	key := s.KeyFromPublicURL(publicURL)
	if key == "" {
		return nil
	}
	err := s.Bucket.DeleteObject(key, oss.WithContext(ctx))
	if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 404 {
		return nil
	}
	return err
}

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

// KeyFromPublicURL returns "" for URLs this bucket did not issue.
func (s *OSSService) KeyFromPublicURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	base := s.PublicURL("x")
	base = strings.TrimSuffix(base, "x")
	if !strings.HasPrefix(u, base) {
		return ""
	}
	return strings.TrimPrefix(u, base)
}

// BrandingKey builds churches/<id>/branding/<slot>_<ts>_<rand>.webp
func BrandingKey(churchID, slot string, now time.Time) string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("churches/%s/branding/%s_%s_%s.webp",
		churchID, slot, now.UTC().Format("20060102_150405"), hex.EncodeToString(b))
}
