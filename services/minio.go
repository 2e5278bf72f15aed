package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinIOService is a BlobStore driver keeping lesson content as objects under lessons/.
type MinIOService struct {
	appContext.DefaultService
	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
}

const MINIO_SVC = "minio_svc"

const minioObjectPrefix = "lessons/"

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "learnhub-content"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("MinIO service started successfully with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MinIOService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created MinIO bucket: %s", svc.bucketName)
	}

	return nil
}

func objectName(key string) string {
	return minioObjectPrefix + key
}

func (svc *MinIOService) Put(ctx context.Context, key string, data []byte) error {
	_, err := svc.client.PutObject(ctx, svc.bucketName, objectName(key), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func (svc *MinIOService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	object, err := svc.client.GetObject(ctx, svc.bucketName, objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get object: %v", err)
	}
	defer object.Close()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read object: %v", err)
	}
	return data, true, nil
}

func (svc *MinIOService) Delete(ctx context.Context, key string) error {
	err := svc.client.RemoveObject(ctx, svc.bucketName, objectName(key), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file from MinIO: %v", err)
	}
	return nil
}

func (svc *MinIOService) Count(ctx context.Context) (int64, error) {
	objects, err := svc.ListFiles(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(objects)), nil
}

func (svc *MinIOService) TotalSize(ctx context.Context) (int64, error) {
	objects, err := svc.ListFiles(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, object := range objects {
		total += object.Size
	}
	return total, nil
}

func (svc *MinIOService) Clear(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectsCh := forwardObjects(ctx, svc.client.ListObjects(ctx, svc.bucketName, minio.ListObjectsOptions{
		Prefix:    minioObjectPrefix,
		Recursive: true,
	}))

	for removeErr := range svc.client.RemoveObjects(ctx, svc.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil {
			return fmt.Errorf("failed to remove %s: %v", removeErr.ObjectName, removeErr.Err)
		}
	}
	return nil
}

// forwardObjects passes listed objects on for removal until the listing ends or ctx is done.
func forwardObjects(ctx context.Context, listed <-chan minio.ObjectInfo) <-chan minio.ObjectInfo {
	out := make(chan minio.ObjectInfo)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case object, ok := <-listed:
				if !ok {
					return
				}
				if object.Err != nil {
					log.WithError(object.Err).Warn("Failed to list object for removal")
					continue
				}
				select {
				case out <- object:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (svc *MinIOService) ListFiles(ctx context.Context) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	objectCh := svc.client.ListObjects(ctx, svc.bucketName, minio.ListObjectsOptions{
		Prefix:    minioObjectPrefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %v", object.Err)
		}
		objects = append(objects, object)
	}

	return objects, nil
}

var minioQuotaCodes = map[string]bool{
	"XMinioStorageFull":              true,
	"XMinioAdminBucketQuotaExceeded": true,
	"QuotaExceeded":                  true,
	"EntityTooLarge":                 true,
}

// classifyMinioError maps server-side capacity errors onto ErrQuotaExceeded.
func classifyMinioError(err error) error {
	code := minio.ToErrorResponse(err).Code
	if minioQuotaCodes[code] || strings.Contains(strings.ToLower(err.Error()), "storage full") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrWriteFailure, err)
}
