package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/ssl/cleanshot-cloud/jsonutil"
	"github.com/ssl/cleanshot-cloud/querybuilder"
	"github.com/ssl/cleanshot-cloud/router"
)

var (
	errUploadNotFound = errors.New("Upload not found")
	errFileNotSent    = errors.New("File not uploaded")
	errFileTooLarge   = errors.New("File too large")
	errFileNotStored  = errors.New("File not stored")
	errNoFreeSlug     = errors.New("Could not allocate a slug")
)

// MediaPayload describes a reserved upload.
type MediaPayload struct {
	FullURL     string `json:"full_url"`
	DownloadURL string `json:"download_url"`
	ID          int64  `json:"id"`
}

// CreateImageData is the data member of the create image response.
type CreateImageData struct {
	Media     MediaPayload `json:"media"`
	UploadURL string       `json:"upload_url"`
}

// CreateImageResponse is returned by POST /v1/media/image.
type CreateImageResponse struct {
	Data CreateImageData `json:"data"`
}

func blobKey(id any) string {
	return fmt.Sprintf("%v.png", id)
}

// viewImage streams the stored PNG. Every failure, including database errors,
// is reported as 404.
func (s *Service) viewImage(w http.ResponseWriter, r *http.Request, p router.Params) error {
	slug := p.Get("slug")

	record, ok, err := s.db.Select(r.Context(), uploadsTable, []string{"id"}, querybuilder.Where("slug", slug))
	if err != nil || !ok {
		if err != nil {
			s.logger.WarnContext(r.Context(), "lookup upload failed", "slug", slug, "error", err)
		}
		s.responder.HandleErrorMessage(w, r, http.StatusNotFound, "Not found")
		return nil
	}

	body, err := s.blobs.Get(r.Context(), blobKey(record["id"]))
	if err != nil {
		s.responder.HandleErrorMessage(w, r, http.StatusNotFound, "Not found", err.Error())
		return nil
	}
	defer body.Close()

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("stream %s: %w", slug, err)
	}
	return nil
}

func (s *Service) maintenance(w http.ResponseWriter, r *http.Request, _ router.Params) error {
	s.responder.Echo(w, r, http.StatusOK, "all ok :)")
	return nil
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request, _ router.Params) error {
	s.responder.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "ok"})
	return nil
}

// user serves the configured profile file. The same document answers login
// and code redemption; there is a single user.
func (s *Service) user(w http.ResponseWriter, r *http.Request, _ router.Params) error {
	data, err := os.ReadFile(s.userFile)
	if err != nil {
		return fmt.Errorf("read user file: %w", err)
	}

	var profile any
	if err := jsonutil.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("decode user file: %w", err)
	}

	s.responder.RespondWithJSON(w, r, http.StatusOK, profile)
	return nil
}

func (s *Service) createImage(w http.ResponseWriter, r *http.Request, _ router.Params) error {
	slug, err := s.freeSlug(r)
	if err != nil {
		return err
	}

	id, err := s.db.Insert(r.Context(), uploadsTable, querybuilder.Pairs{}.
		Set("slug", slug).
		Set("created_at", s.now().Unix()))
	if err != nil {
		return err
	}
	uploadMetrics().observe(stageReserved)

	base := s.baseURL(r)
	url := base + "/" + slug
	s.responder.RespondWithJSON(w, r, http.StatusOK, CreateImageResponse{
		Data: CreateImageData{
			Media:     MediaPayload{FullURL: url, DownloadURL: url, ID: id},
			UploadURL: base + "/v1/media/upload/" + strconv.FormatInt(id, 10),
		},
	})
	return nil
}

func (s *Service) freeSlug(r *http.Request) (string, error) {
	for range maxSlugAttempts {
		slug := s.newSlug()
		_, taken, err := s.db.Select(r.Context(), uploadsTable, []string{"id"}, querybuilder.Where("slug", slug))
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	return "", errNoFreeSlug
}

func (s *Service) uploadImage(w http.ResponseWriter, r *http.Request, p router.Params) error {
	id, err := strconv.ParseInt(p.Get("id"), 10, 64)
	if err != nil {
		return errUploadNotFound
	}

	record, ok, err := s.db.Select(r.Context(), uploadsTable, []string{"completed"}, querybuilder.Where("id", id))
	if err != nil {
		return err
	}
	if !ok || fmt.Sprint(record["completed"]) == "1" {
		return errUploadNotFound
	}

	if r.ContentLength > s.maxUpload {
		return errFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(min(maxUploadMemory, s.maxUpload)); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errFileTooLarge
		}
		return errFileNotSent
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return errFileNotSent
	}
	defer file.Close()

	if err := s.blobs.Put(r.Context(), blobKey(id), file, "image/png"); err != nil {
		s.logger.ErrorContext(r.Context(), "store upload failed", "id", id, "error", err)
		return errFileNotStored
	}
	uploadMetrics().observe(stageStored)

	s.responder.NoContent(w)
	return nil
}

func (s *Service) completeUpload(w http.ResponseWriter, r *http.Request, p router.Params) error {
	if _, err := s.db.Update(r.Context(), uploadsTable,
		querybuilder.Pairs{}.Set("completed", 1),
		querybuilder.Where("id", p.Get("id")),
	); err != nil {
		return err
	}
	uploadMetrics().observe(stageCompleted)

	s.responder.RespondWithJSON(w, r, http.StatusOK, []any{})
	return nil
}
