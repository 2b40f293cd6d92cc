// Package media implements the CleanShot cloud endpoints: reserving an upload,
// receiving the image, marking it complete and serving it by slug.
package media

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ssl/cleanshot-cloud/internal/blob"
	"github.com/ssl/cleanshot-cloud/querybuilder"
	"github.com/ssl/cleanshot-cloud/responder"
	"github.com/ssl/cleanshot-cloud/router"
)

const (
	uploadsTable    = "uploads"
	maxSlugAttempts = 8
	maxUploadMemory = 32 << 20
)

// DefaultMaxUploadSize caps an upload request body unless WithMaxUploadSize
// says otherwise.
const DefaultMaxUploadSize int64 = 32 << 20

// Option configures a Service.
type Option func(*Service)

// WithResponder sets the responder used for JSON output.
func WithResponder(r *responder.Responder) Option {
	return func(s *Service) {
		if r != nil {
			s.responder = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUserFile sets the JSON file returned by the user and auth endpoints.
func WithUserFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.userFile = path
		}
	}
}

// WithPublicHost fixes the host used in generated URLs. Without it the
// request Host header is used.
func WithPublicHost(host string) Option {
	return func(s *Service) {
		s.publicHost = host
	}
}

// WithMaxUploadSize caps the upload request body in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithClock replaces time.Now for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSlugGenerator replaces the ULID slug source.
func WithSlugGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newSlug = gen
		}
	}
}

// Service serves the media API. It expects an uploads table with the columns
// id (auto increment), slug (unique), created_at (unix seconds) and completed
// (0 or 1, default 0).
type Service struct {
	db         *querybuilder.Builder
	blobs      blob.Store
	responder  *responder.Responder
	logger     *slog.Logger
	userFile   string
	publicHost string
	maxUpload  int64
	now        func() time.Time
	newSlug    func() string
}

// NewService wires the store and the blob backend.
func NewService(db *querybuilder.Builder, blobs blob.Store, opts ...Option) *Service {
	s := &Service{
		db:        db,
		blobs:     blobs,
		responder: responder.NewResponder(),
		logger:    slog.Default(),
		userFile:  "user.json",
		maxUpload: DefaultMaxUploadSize,
		now:       time.Now,
		newSlug: func() string {
			return ulid.Make().String()
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register adds the routes to rt. Order matters: "/@slug" is first, so it
// must be preceded by any other single segment GET route the server needs.
func (s *Service) Register(rt *router.Router) {
	rt.Get("/@slug", s.viewImage)
	rt.Get("/v1/maintenance", s.maintenance)
	rt.Get("/v1/user", s.user)
	rt.Get("/v1/auth/logout", s.logout)
	rt.Post("/v1/auth/login", s.user)
	rt.Post("/v1/auth/code", s.user)
	rt.Post("/v1/auth/code/redeem", s.user)
	rt.Post("/v1/media/image", s.createImage)
	rt.Post("/v1/media/upload/@id", s.uploadImage)
	rt.Post("/v1/media/image/@id/upload-completed", s.completeUpload)
}

func (s *Service) baseURL(r *http.Request) string {
	host := s.publicHost
	if host == "" {
		host = r.Host
	}
	return "https://" + host
}
