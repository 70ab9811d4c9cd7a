package validators

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-collection-sync/models"
)

const (
	FieldCredentials = "credentials"
	FieldClientUsn   = "client_usn"
	FieldGraves      = "graves"
	FieldNotetypes   = "notetypes"
	FieldDecks       = "decks"
	FieldDeckConfig  = "deck_config"
	FieldTags        = "tags"
	FieldRevlog      = "revlog"
	FieldCards       = "cards"
	FieldNotes       = "notes"
	FieldChunkSize   = "chunk_size"
	FieldCounts      = "counts"
)

// SyncRequestValidator checks decoded sync payloads before they reach the
// collection. It only rejects what no well-behaved client sends; conflicts
// between replicas are resolved by the sync itself.
type SyncRequestValidator struct {
	// maxChunkRows bounds the rows of one applyChunk request. Zero disables
	// the check.
	maxChunkRows int
}

func NewSyncRequestValidator(maxChunkRows int) Validator {
	return &SyncRequestValidator{maxChunkRows: maxChunkRows}
}

func (v *SyncRequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.HostKeyRequest:
		return v.validateHostKeyRequest(ctx, value, fields...)
	case *models.HostKeyRequest:
		return v.validateHostKeyRequest(ctx, *value, fields...)

	case models.MetaRequest, *models.MetaRequest:
		// version bounds are the server's call
		return nil

	case models.StartRequest:
		return v.validateStartRequest(ctx, value, fields...)
	case *models.StartRequest:
		return v.validateStartRequest(ctx, *value, fields...)

	case models.ApplyGravesRequest:
		return validateGraves(value.Chunk)
	case *models.ApplyGravesRequest:
		return validateGraves(value.Chunk)

	case models.ApplyChangesRequest:
		return v.validateChanges(ctx, value.Changes, fields...)
	case *models.ApplyChangesRequest:
		return v.validateChanges(ctx, value.Changes, fields...)

	case models.ApplyChunkRequest:
		return v.validateChunk(ctx, value.Chunk, fields...)
	case *models.ApplyChunkRequest:
		return v.validateChunk(ctx, value.Chunk, fields...)

	case models.SanityCheckRequest:
		return validateCounts(value.Client)
	case *models.SanityCheckRequest:
		return validateCounts(value.Client)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncRequestValidator) validateHostKeyRequest(ctx context.Context, req models.HostKeyRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCredentials}
	}

	for _, f := range fields {
		switch f {
		case FieldCredentials:
			if strings.TrimSpace(req.Username) == "" || req.Password == "" {
				return ErrEmptyCredentials
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateStartRequest(ctx context.Context, req models.StartRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldClientUsn, FieldGraves}
	}

	for _, f := range fields {
		switch f {
		case FieldClientUsn:
			if req.ClientUsn < 0 {
				return ErrInvalidUsn
			}
		case FieldGraves:
			if req.Graves == nil {
				continue
			}
			if err := validateGraves(*req.Graves); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateGraves(g models.Graves) error {
	for _, ids := range [][]int64{g.Cards, g.Notes, g.Decks} {
		if err := positiveIDs(ids); err != nil {
			return err
		}
	}
	return nil
}

func (v *SyncRequestValidator) validateChanges(ctx context.Context, c models.UnchunkedChanges, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldNotetypes, FieldDecks, FieldDeckConfig, FieldTags}
	}

	for _, f := range fields {
		switch f {
		case FieldNotetypes:
			for _, nt := range c.Notetypes {
				if err := namedObject(nt.ID, nt.Name); err != nil {
					return err
				}
			}
		case FieldDecks:
			for _, d := range c.Decks {
				if err := namedObject(d.ID, d.Name); err != nil {
					return err
				}
			}
		case FieldDeckConfig:
			for _, dc := range c.DeckConfig {
				if err := namedObject(dc.ID, dc.Name); err != nil {
					return err
				}
			}
		case FieldTags:
			for _, tag := range c.Tags {
				if strings.TrimSpace(tag) == "" {
					return ErrEmptyTag
				}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateChunk(ctx context.Context, c models.Chunk, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldChunkSize, FieldRevlog, FieldCards, FieldNotes}
	}

	for _, f := range fields {
		switch f {
		case FieldChunkSize:
			if v.maxChunkRows > 0 && c.Len() > v.maxChunkRows {
				return ErrChunkTooLarge
			}
		case FieldRevlog:
			for _, r := range c.Revlog {
				if r.ID <= 0 {
					return ErrInvalidID
				}
				if r.CardID <= 0 {
					return ErrInvalidReference
				}
			}
		case FieldCards:
			for _, card := range c.Cards {
				if card.ID <= 0 {
					return ErrInvalidID
				}
				if card.NoteID <= 0 || card.DeckID <= 0 {
					return ErrInvalidReference
				}
			}
		case FieldNotes:
			for _, n := range c.Notes {
				if n.ID <= 0 {
					return ErrInvalidID
				}
				if n.GUID == "" {
					return ErrEmptyGUID
				}
				if n.NotetypeID <= 0 {
					return ErrInvalidReference
				}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateCounts(c models.SanityCheckCounts) error {
	for _, n := range []int64{
		c.Counts.New, c.Counts.Learn, c.Counts.Review,
		c.Cards, c.Notes, c.Revlog, c.Graves, c.Notetypes, c.Decks, c.DeckConfig,
	} {
		if n < 0 {
			return ErrNegativeCount
		}
	}
	return nil
}

func namedObject(id int64, name string) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

func positiveIDs(ids []int64) error {
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidID
		}
	}
	return nil
}
