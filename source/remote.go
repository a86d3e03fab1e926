package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// RemoteScheme prefixes object store inputs: s3://endpoint/bucket/key. An
// empty endpoint (s3:///bucket/key) selects the registry default.
const RemoteScheme = "s3://"

func IsRemote(name string) bool { return strings.HasPrefix(name, RemoteScheme) }

// Location is one object or prefix in an object store.
type Location struct {
	Endpoint string
	Bucket   string
	Key      string
}

func (l Location) String() string {
	return RemoteScheme + l.Endpoint + "/" + l.Bucket + "/" + l.Key
}

func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("%q: scheme %q is not s3", raw, u.Scheme)
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%q: no bucket", raw)
	}
	return Location{Endpoint: u.Host, Bucket: bucket, Key: key}, nil
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	// CacheDir receives downloaded objects, laid out as
	// endpoint/bucket/key.
	CacheDir string
}

// Registry owns the object store clients used to list and fetch remote
// inputs. Clients are created on first use, one per endpoint.
type Registry struct {
	cfg    StorageConfig
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*minio.Client
}

func NewRegistry(cfg StorageConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.TempDir()
	}
	return &Registry{cfg: cfg, logger: logger, clients: make(map[string]*minio.Client)}
}

func (r *Registry) endpoint(loc Location) string {
	if loc.Endpoint == "" {
		return r.cfg.Endpoint
	}
	return loc.Endpoint
}

// Client returns the client for endpoint, creating it if needed.
func (r *Registry) Client(endpoint string) (*minio.Client, error) {
	if endpoint == "" {
		endpoint = r.cfg.Endpoint
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[endpoint]; ok {
		return c, nil
	}
	c, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(r.cfg.AccessKey, r.cfg.SecretKey, ""),
		Secure: r.cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client for %s: %w", endpoint, err)
	}
	r.logger.Debug(fmt.Sprintf("Created object store client for %s", endpoint), "module", "source")
	r.clients[endpoint] = c
	return c, nil
}

// List returns the objects under loc.Key, recursively, in key order.
func (r *Registry) List(ctx context.Context, loc Location) ([]Location, error) {
	endpoint := r.endpoint(loc)
	c, err := r.Client(endpoint)
	if err != nil {
		return nil, err
	}

	var out []Location
	for obj := range c.ListObjects(ctx, loc.Bucket, minio.ListObjectsOptions{
		Prefix:    loc.Key,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", loc, obj.Err)
		}
		out = append(out, Location{Endpoint: endpoint, Bucket: loc.Bucket, Key: obj.Key})
	}
	return out, nil
}

// CachePath is where Fetch stores loc.
func (r *Registry) CachePath(loc Location) string {
	return filepath.Join(r.cfg.CacheDir, r.endpoint(loc), loc.Bucket, filepath.FromSlash(path.Clean("/"+loc.Key)))
}

// Fetch downloads loc into the cache directory and returns the local path.
// Objects already in the cache are not downloaded again.
func (r *Registry) Fetch(ctx context.Context, loc Location) (string, error) {
	local := r.CachePath(loc)
	if _, err := os.Stat(local); err == nil {
		r.logger.Debug(fmt.Sprintf("Using cached %s", local), "module", "source")
		return local, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	c, err := r.Client(r.endpoint(loc))
	if err != nil {
		return "", err
	}
	r.logger.Info(fmt.Sprintf("Fetching %s", loc), "module", "source")
	if err := c.FGetObject(ctx, loc.Bucket, loc.Key, local, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("fetch %s: %w", loc, err)
	}
	return local, nil
}
