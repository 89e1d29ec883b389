package businessflow

import (
	"context"
	"errors"

	"github.com/plexlink/plexlink/app/services"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
)

// maxGenerateAttempts bounds the random-alias retry loop. The partial
// unique index on live aliases is the real arbiter; retries only smooth
// over the rare random collision.
const maxGenerateAttempts = 5

// aliasBinder attaches alias rows to links and hubs. Shared by LinkFlow
// and LinkHubFlow since both draw from the same namespace.
type aliasBinder struct {
	aliasSvc  services.AliasService
	aliasRepo repository.AliasRepository
}

// bind inserts an alias row for the resource. With a custom alias, a
// validation failure or a lost uniqueness race surfaces as a business
// error; with a generated one, collisions retry with a fresh candidate.
func (b *aliasBinder) bind(ctx context.Context, custom *string, resourceType string, linkID, linkHubID *uint) (string, error) {
	if custom != nil {
		if err := b.validateCustom(*custom); err != nil {
			return "", err
		}
		row := &models.Alias{Alias: *custom, ResourceType: resourceType, LinkID: linkID, LinkHubID: linkHubID}
		if err := b.aliasRepo.Save(ctx, row); err != nil {
			if repository.IsDuplicateKey(err) {
				return "", ErrAliasTaken
			}
			return "", err
		}
		return *custom, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := b.aliasSvc.Generate()
		if err != nil {
			return "", err
		}
		row := &models.Alias{Alias: candidate, ResourceType: resourceType, LinkID: linkID, LinkHubID: linkHubID}
		err = b.aliasRepo.Save(ctx, row)
		if err == nil {
			return candidate, nil
		}
		if !repository.IsDuplicateKey(err) {
			return "", err
		}
	}
	return "", NewBusinessError("ALIAS_SPACE_EXHAUSTED", "could not generate a free alias", ErrAliasTaken)
}

// validateCustom maps alias service validation failures to flow errors
func (b *aliasBinder) validateCustom(alias string) error {
	err := b.aliasSvc.Validate(alias)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrAliasReserved):
		return ErrAliasReserved
	default:
		return ErrInvalidAlias
	}
}
