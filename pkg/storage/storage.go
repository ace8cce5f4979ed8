// Package storage keeps exported documents in Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/transflow/pkg/lifecycle"
)

// Object describes a blob to write. Metadata keys must be valid C#
// identifiers, e.g. "document_id".
type Object struct {
	Key         string
	ContentType string
	Metadata    map[string]string
}

// Blob is an open blob stream. The caller closes Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Metadata      map[string]string
}

// System is the blob store used for published exports.
type System interface {
	// Start creates the container once the lifecycle starts.
	Start(lc *lifecycle.Coordinator) error
	Upload(ctx context.Context, obj Object, body io.Reader) error
	// Download returns ErrNotFound for a missing key.
	Download(ctx context.Context, key string) (*Blob, error)
	// Delete returns ErrNotFound for a missing key.
	Delete(ctx context.Context, key string) error
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// New builds the Azure client without contacting the service. A connection
// string wins over ServiceURL, which authenticates through
// azidentity.DefaultAzureCredential.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "storage", "container", cfg.ContainerName),
	}, nil
}

func newClient(cfg *Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve azure credential: %w", err)
	}
	return azblob.NewClient(cfg.ServiceURL, cred, &azblob.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: "transflow"},
		},
	})
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		switch {
		case err == nil:
			a.logger.Info("storage container created")
		case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
			a.logger.Info("storage container ready")
		default:
			a.logger.Error("storage container initialization failed", "error", err)
		}
	})
	return nil
}

func (a *azure) Upload(ctx context.Context, obj Object, body io.Reader) error {
	if err := ValidateKey(obj.Key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(obj.ContentType)},
	}
	if len(obj.Metadata) > 0 {
		opts.Metadata = make(map[string]*string, len(obj.Metadata))
		for k, v := range obj.Metadata {
			opts.Metadata[k] = to.Ptr(v)
		}
	}

	if _, err := a.client.UploadStream(ctx, a.container, obj.Key, body, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", obj.Key, err)
	}
	return nil
}

func (a *azure) Download(ctx context.Context, key string) (*Blob, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		return nil, a.mapErr("download", key, err)
	}

	b := &Blob{
		Body:        resp.Body,
		ContentType: "application/octet-stream",
		Metadata:    make(map[string]string, len(resp.Metadata)),
	}
	if resp.ContentType != nil {
		b.ContentType = *resp.ContentType
	}
	if resp.ContentLength != nil {
		b.ContentLength = *resp.ContentLength
	}
	for k, v := range resp.Metadata {
		if v != nil {
			b.Metadata[strings.ToLower(k)] = *v
		}
	}
	return b, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		return a.mapErr("delete", key, err)
	}
	return nil
}

func (a *azure) mapErr(op, key string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s blob %s: %w", op, key, err)
}

// ValidateKey rejects empty keys and keys containing a ".." segment.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
