package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/bdaybook/internal/model"
	"github.com/and161185/bdaybook/internal/service"
)

// maxFormMemory bounds the in-memory part of multipart parsing.
const maxFormMemory = 4 << 20

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	userID, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]string{"user_id": userID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	tok, u, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"access_token": tok.AccessToken,
		"expires_at":   tok.ExpiresAt,
		"user_id":      u.ID.String(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerIDFromCtx(r.Context())
	people, err := s.people.ListAll(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, toPersonDTOs(people))
}

func (s *Server) handleRanked(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerIDFromCtx(r.Context())

	// "today" is captured once here and threaded through the whole ranking.
	var today time.Time
	if q := r.URL.Query().Get("today"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "today must be YYYY-MM-DD")
			return
		}
		today = t
	}

	view, err := s.people.Ranked(r.Context(), owner, today)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, toRankedDTO(view))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerIDFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.people.Get(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, toPersonDTO(*p))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerIDFromCtx(r.Context())
	if err := s.parseForm(w, r); err != nil {
		formError(w, err)
		return
	}
	in := service.PersonInput{
		Name:          r.FormValue("name"),
		Nickname:      r.FormValue("nickname"),
		PhoneNumber:   r.FormValue("phone_number"),
		BirthDate:     r.FormValue("birth_date"),
		Relationship:  r.FormValue("relationship"),
		Zodiac:        r.FormValue("zodiac"),
		Message:       r.FormValue("personalized_message"),
		FavoriteColor: r.FormValue("favorite_color"),
		Hobbies:       r.FormValue("hobbies"),
		GiftIdeas:     r.FormValue("gift_ideas"),
		Notes:         r.FormValue("notes"),
	}
	photo, err := photoFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad photo upload")
		return
	}

	p, err := s.people.Create(r.Context(), owner, in, photo)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toPersonDTO(*p))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerIDFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.parseForm(w, r); err != nil {
		formError(w, err)
		return
	}
	// only fields present in the form are patched
	patch := model.PersonPatch{
		Name:          formPtr(r, "name"),
		Nickname:      formPtr(r, "nickname"),
		PhoneDigits:   formPtr(r, "phone_number"),
		BirthDate:     formPtr(r, "birth_date"),
		Relationship:  formPtr(r, "relationship"),
		Zodiac:        formPtr(r, "zodiac"),
		Message:       formPtr(r, "personalized_message"),
		FavoriteColor: formPtr(r, "favorite_color"),
		Hobbies:       formPtr(r, "hobbies"),
		GiftIdeas:     formPtr(r, "gift_ideas"),
		Notes:         formPtr(r, "notes"),
	}
	photo, err := photoFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad photo upload")
		return
	}

	p, err := s.people.Update(r.Context(), owner, id, patch, photo)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, toPersonDTO(*p))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerIDFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.people.Delete(r.Context(), owner, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id.String()})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	rc, err := s.assets.Open(r.Context(), ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(filepath.Ext(ref)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return uuid.Nil, false
	}
	return id, true
}

// parseForm parses an urlencoded or multipart body. Multipart bodies are
// hard-capped before parsing so an oversized photo is rejected at ingest
// instead of being buffered whole.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+maxFormMemory)
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func formError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeError(w, http.StatusBadRequest, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "bad form data")
}

// formPtr distinguishes "absent" from "present but empty" for patches.
func formPtr(r *http.Request, key string) *string {
	vs, ok := r.Form[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

// photoFromRequest reads the optional multipart "photo" part into memory.
func photoFromRequest(r *http.Request) (*service.Photo, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.Photo{Filename: hdr.Filename, Data: data}, nil
}
