package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/validation"

	"github.com/rs/zerolog"
)

// Fields the owner may never change through a profile patch.
var immutableProfileFields = map[string]bool{
	"id":             true,
	"userId":         true,
	"createdAt":      true,
	"updatedAt":      true,
	"primaryEmailId": true,
}

var (
	startupPatchable  = patchableFields(reflect.TypeOf(models.Startup{}))
	providerPatchable = patchableFields(reflect.TypeOf(models.ServiceProvider{}))
)

type ProfileService struct {
	repo      domain.Repository
	validator *validation.Validator
	logger    *zerolog.Logger
}

func NewProfileService(repo domain.Repository, v *validation.Validator, logger *zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, validator: v, logger: logger}
}

func (s *ProfileService) Startup(ctx context.Context, id string) (*models.Startup, error) {
	return s.repo.GetStartup(ctx, id)
}

func (s *ProfileService) ServiceProvider(ctx context.Context, id string) (*models.ServiceProvider, error) {
	return s.repo.GetServiceProvider(ctx, id)
}

// PatchStartup merges a JSON patch into the startup profile and stores it
// once the merged profile validates.
func (s *ProfileService) PatchStartup(ctx context.Context, id string, patch []byte) (*models.Startup, error) {
	current, err := s.repo.GetStartup(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if err := applyPatch(patch, startupPatchable, &merged); err != nil {
		return nil, err
	}
	merged.ID, merged.UserID, merged.CreatedAt = current.ID, current.UserID, current.CreatedAt

	if errs := s.validator.Struct("", merged); errs != nil {
		return nil, domain.NewValidationError("invalid profile", errs)
	}
	if err := s.repo.UpdateStartup(ctx, &merged); err != nil {
		return nil, err
	}
	s.logger.Info().Str("startup_id", id).Msg("startup profile updated")
	return &merged, nil
}

func (s *ProfileService) PatchServiceProvider(ctx context.Context, id string, patch []byte) (*models.ServiceProvider, error) {
	current, err := s.repo.GetServiceProvider(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if err := applyPatch(patch, providerPatchable, &merged); err != nil {
		return nil, err
	}
	merged.ID, merged.UserID, merged.CreatedAt = current.ID, current.UserID, current.CreatedAt
	merged.PrimaryEmailID = current.PrimaryEmailID
	if merged.Features == nil {
		merged.Features = []string{}
	}

	if errs := s.validator.Struct("", merged); errs != nil {
		return nil, domain.NewValidationError("invalid profile", errs)
	}
	if err := s.repo.UpdateServiceProvider(ctx, &merged); err != nil {
		return nil, err
	}
	s.logger.Info().Str("provider_id", id).Msg("service provider profile updated")
	return &merged, nil
}

// applyPatch rejects keys outside allowed, then decodes the patch over dst.
func applyPatch(patch []byte, allowed map[string]bool, dst interface{}) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return domain.NewValidationError("invalid profile patch", models.FieldErrors{"body": "must be a JSON object"})
	}
	if len(keys) == 0 {
		return domain.NewValidationError("invalid profile patch", models.FieldErrors{"body": "no fields to update"})
	}

	errs := models.FieldErrors{}
	for k := range keys {
		switch {
		case immutableProfileFields[k]:
			errs.Add(k, k+" cannot be changed")
		case !allowed[k]:
			errs.Add(k, "unknown profile field "+k)
		}
	}
	if !errs.Empty() {
		return domain.NewValidationError("invalid profile patch", errs)
	}

	dec := json.NewDecoder(bytes.NewReader(patch))
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("invalid profile patch", models.FieldErrors{"body": fmt.Sprintf("malformed value: %v", err)})
	}
	return nil
}

func patchableFields(t reflect.Type) map[string]bool {
	out := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" || immutableProfileFields[name] {
			continue
		}
		out[name] = true
	}
	return out
}
