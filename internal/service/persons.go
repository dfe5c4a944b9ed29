package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/bdaybook/internal/birthday"
	"github.com/and161185/bdaybook/internal/errs"
	"github.com/and161185/bdaybook/internal/media"
	"github.com/and161185/bdaybook/internal/model"
	"github.com/and161185/bdaybook/internal/repository"
)

// Field length caps, carried over from the original schema.
const (
	maxNameLen         = 100
	maxNicknameLen     = 100
	maxRelationshipLen = 50
	maxZodiacLen       = 20
	maxColorLen        = 50

	// DefaultRelationship is applied when a create request omits one.
	DefaultRelationship = "Friend"

	// DefaultMaxPhotoSize caps uploaded photos at 2 MiB.
	DefaultMaxPhotoSize = 2 << 20
)

// Photo is an optional asset attached to a create or update request.
type Photo struct {
	Filename string
	Data     []byte
}

// PersonInput carries the fields of a create request.
type PersonInput struct {
	Name          string
	Nickname      string
	PhoneNumber   string // raw; normalized to 10 digits
	BirthDate     string // YYYY-MM-DD
	Relationship  string
	Zodiac        string
	Message       string
	FavoriteColor string
	Hobbies       string
	GiftIdeas     string
	Notes         string
}

// PersonService defines the record lifecycle and the read projections.
// Create, Update and Delete coordinate the media store and the relational
// store: the asset operation and the transaction are not atomic, so a fixed
// ordering plus compensation keeps a committed row from ever referencing an
// asset that was never uploaded. Failed compensations leave an orphaned
// asset at worst; they are logged, never surfaced.
type PersonService interface {
	// Create validates input, uploads the optional photo, then inserts the row.
	Create(ctx context.Context, ownerID uuid.UUID, in PersonInput, photo *Photo) (*model.Person, error)
	// Update applies a partial update; a new photo replaces the old asset.
	Update(ctx context.Context, ownerID, id uuid.UUID, patch model.PersonPatch, photo *Photo) (*model.Person, error)
	// Delete removes the row, then releases its asset.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// Get returns a single record.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error)
	// ListAll returns every record for the owner.
	ListAll(ctx context.Context, ownerID uuid.UUID) ([]model.Person, error)
	// Ranked derives the today/next/upcoming projection for the given "today".
	Ranked(ctx context.Context, ownerID uuid.UUID, today time.Time) (birthday.RankedView, error)
}

type PersonServiceImpl struct {
	repo     repository.PersonRepository
	media    media.Store
	log      *zap.Logger
	maxPhoto int64
}

// NewPersonService constructs PersonService. maxPhoto <= 0 selects the default cap.
func NewPersonService(repo repository.PersonRepository, store media.Store, log *zap.Logger, maxPhoto int64) *PersonServiceImpl {
	if maxPhoto <= 0 {
		maxPhoto = DefaultMaxPhotoSize
	}
	return &PersonServiceImpl{repo: repo, media: store, log: log, maxPhoto: maxPhoto}
}

// Create runs the create leg of the saga: upload first, then insert, and
// compensate the upload if the insert fails.
func (s *PersonServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in PersonInput, photo *Photo) (*model.Person, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty owner", errs.ErrValidation)
	}
	p, err := buildPerson(ownerID, in)
	if err != nil {
		return nil, err
	}
	if err := s.checkPhoto(photo); err != nil {
		return nil, err
	}

	if photo != nil {
		ref, err := s.media.Upload(ctx, bytes.NewReader(photo.Data), photo.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMediaUpload, err)
		}
		p.PhotoRef = ref
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.compensate(ctx, p.PhotoRef, "create")
		return nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return p, nil
}

// Update loads, merges, uploads the replacement photo, writes the row, and
// only after a successful commit releases the replaced asset.
func (s *PersonServiceImpl) Update(ctx context.Context, ownerID, id uuid.UUID, patch model.PersonPatch, photo *Photo) (*model.Person, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty owner/id", errs.ErrValidation)
	}
	p, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	if err := applyPatch(p, patch); err != nil {
		return nil, err
	}
	if err := s.checkPhoto(photo); err != nil {
		return nil, err
	}

	oldRef := p.PhotoRef
	newRef := ""
	if photo != nil {
		newRef, err = s.media.Upload(ctx, bytes.NewReader(photo.Data), photo.Filename)
		if err != nil {
			// the old asset is untouched and still referenced
			return nil, fmt.Errorf("%w: %v", errs.ErrMediaUpload, err)
		}
		p.PhotoRef = newRef
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.compensate(ctx, newRef, "update")
		if errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}

	// Row committed with the new reference; the replaced asset is now
	// unreachable and its removal is best-effort.
	if newRef != "" && oldRef != "" && oldRef != newRef {
		if derr := s.media.Delete(ctx, oldRef); derr != nil {
			s.log.Error("replaced asset cleanup failed; orphan left behind",
				zap.String("ref", oldRef), zap.Error(derr))
		}
	}
	return p, nil
}

// Delete removes the row first; the asset is released only after the commit,
// so a failure leaves the record fully intact.
func (s *PersonServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return fmt.Errorf("%w: empty owner/id", errs.ErrValidation)
	}
	p, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}

	if p.PhotoRef != "" {
		if derr := s.media.Delete(ctx, p.PhotoRef); derr != nil {
			s.log.Error("asset cleanup after delete failed; orphan left behind",
				zap.String("ref", p.PhotoRef), zap.Error(derr))
		}
	}
	return nil
}

// Get returns one record scoped by owner.
func (s *PersonServiceImpl) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty owner/id", errs.ErrValidation)
	}
	return s.repo.Get(ctx, ownerID, id)
}

// ListAll returns the owner's full record set.
func (s *PersonServiceImpl) ListAll(ctx context.Context, ownerID uuid.UUID) ([]model.Person, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty owner", errs.ErrValidation)
	}
	out, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return out, nil
}

// Ranked reads the record set and feeds it through the ranker with a single
// captured "today".
func (s *PersonServiceImpl) Ranked(ctx context.Context, ownerID uuid.UUID, today time.Time) (birthday.RankedView, error) {
	people, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return birthday.RankedView{}, err
	}
	if today.IsZero() {
		today = time.Now().UTC()
	}
	return birthday.Rank(people, today), nil
}

// compensate deletes a just-uploaded asset after a failed transaction.
// Its own failure is logged only; the original error is what the caller sees.
func (s *PersonServiceImpl) compensate(ctx context.Context, ref, op string) {
	if ref == "" {
		return
	}
	if err := s.media.Delete(ctx, ref); err != nil {
		s.log.Error("compensating asset delete failed; orphan left behind",
			zap.String("op", op), zap.String("ref", ref), zap.Error(err))
	}
}

// checkPhoto enforces the size cap before any upload happens.
func (s *PersonServiceImpl) checkPhoto(photo *Photo) error {
	if photo == nil {
		return nil
	}
	if len(photo.Data) == 0 {
		return fmt.Errorf("%w: empty photo", errs.ErrValidation)
	}
	if int64(len(photo.Data)) > s.maxPhoto {
		return fmt.Errorf("%w: photo exceeds %d bytes", errs.ErrValidation, s.maxPhoto)
	}
	return nil
}

// buildPerson validates a create request and produces the row to insert.
func buildPerson(ownerID uuid.UUID, in PersonInput) (*model.Person, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	b, ok := birthday.Parse(in.BirthDate)
	if !ok {
		return nil, fmt.Errorf("%w: birth date must be YYYY-MM-DD", errs.ErrValidation)
	}
	digits, err := normalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	rel := strings.TrimSpace(in.Relationship)
	if rel == "" {
		rel = DefaultRelationship
	}
	zodiac := strings.TrimSpace(in.Zodiac)
	if zodiac == "" {
		zodiac = birthday.Zodiac(b)
	}
	return &model.Person{
		ID:            id,
		OwnerID:       ownerID,
		Name:          clamp(in.Name, maxNameLen),
		Nickname:      clamp(in.Nickname, maxNicknameLen),
		PhoneDigits:   digits,
		BirthDate:     canonicalDate(b),
		Relationship:  clamp(rel, maxRelationshipLen),
		Zodiac:        clamp(zodiac, maxZodiacLen),
		Message:       in.Message,
		FavoriteColor: clamp(in.FavoriteColor, maxColorLen),
		Hobbies:       in.Hobbies,
		GiftIdeas:     in.GiftIdeas,
		Notes:         in.Notes,
	}, nil
}

// applyPatch merges a partial update into the loaded row. Nil fields keep
// their prior value.
func applyPatch(p *model.Person, patch model.PersonPatch) error {
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return fmt.Errorf("%w: name cannot be emptied", errs.ErrValidation)
		}
		p.Name = clamp(*patch.Name, maxNameLen)
	}
	if patch.Nickname != nil {
		p.Nickname = clamp(*patch.Nickname, maxNicknameLen)
	}
	if patch.PhoneDigits != nil {
		digits, err := normalizePhone(*patch.PhoneDigits)
		if err != nil {
			return err
		}
		p.PhoneDigits = digits
	}
	if patch.BirthDate != nil {
		b, ok := birthday.Parse(*patch.BirthDate)
		if !ok {
			return fmt.Errorf("%w: birth date must be YYYY-MM-DD", errs.ErrValidation)
		}
		p.BirthDate = canonicalDate(b)
		if patch.Zodiac == nil {
			p.Zodiac = clamp(birthday.Zodiac(b), maxZodiacLen)
		}
	}
	if patch.Relationship != nil {
		p.Relationship = clamp(*patch.Relationship, maxRelationshipLen)
	}
	if patch.Zodiac != nil {
		p.Zodiac = clamp(*patch.Zodiac, maxZodiacLen)
	}
	if patch.Message != nil {
		p.Message = *patch.Message
	}
	if patch.FavoriteColor != nil {
		p.FavoriteColor = clamp(*patch.FavoriteColor, maxColorLen)
	}
	if patch.Hobbies != nil {
		p.Hobbies = *patch.Hobbies
	}
	if patch.GiftIdeas != nil {
		p.GiftIdeas = *patch.GiftIdeas
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	return nil
}

// canonicalDate renders a parsed birth date back to YYYY-MM-DD.
func canonicalDate(b birthday.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", b.Year, int(b.Month), b.Day)
}

// normalizePhone strips separators and requires exactly 10 digits.
func normalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	digits := b.String()
	if len(digits) != 10 {
		return "", fmt.Errorf("%w: phone number must be 10 digits", errs.ErrValidation)
	}
	return digits, nil
}

// clamp truncates s to at most n bytes without splitting a multi-byte rune,
// so the stored value stays valid UTF-8.
func clamp(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
