// Package catalog serves the platform's slow-changing listings, runtime
// images and the add-on catalog, from a disk cache with retried fetches.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"onmodulus/xervo/internal/cache"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/librarian"
	"onmodulus/xervo/internal/retry"
)

// DefaultTTL is how long listings are served from the cache.
const DefaultTTL = 6 * time.Hour

const (
	keyImages = "catalog_images"
	keyAddons = "catalog_addons"
)

// Service reads catalog listings.
type Service struct {
	client *librarian.Client
	cache  *cache.Cache
	ttl    time.Duration
	retry  retry.Config
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides DefaultTTL. A non-positive ttl disables cache reads.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithRetry overrides the retry policy for listing fetches.
func WithRetry(cfg retry.Config) Option {
	return func(s *Service) { s.retry = cfg }
}

// NewService returns a Service. A nil cache disables caching.
func NewService(client *librarian.Client, c *cache.Cache, opts ...Option) *Service {
	s := &Service{client: client, cache: c, ttl: DefaultTTL, retry: retry.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Images lists runtime images.
func (s *Service) Images(ctx context.Context) ([]domain.Image, error) {
	return cache.Fetch(ctx, s.cache, keyImages, s.ttl, func(ctx context.Context) ([]domain.Image, error) {
		return retry.Value(ctx, s.retry, retry.IsRetryable, s.client.Images.List)
	})
}

// Addons lists the add-ons that can be provisioned.
func (s *Service) Addons(ctx context.Context) ([]domain.AvailableAddon, error) {
	return cache.Fetch(ctx, s.cache, keyAddons, s.ttl, func(ctx context.Context) ([]domain.AvailableAddon, error) {
		return retry.Value(ctx, s.retry, retry.IsRetryable, s.client.Addons.Available)
	})
}

// Refresh drops the cached listings.
func (s *Service) Refresh() error {
	if err := s.cache.Invalidate(keyImages); err != nil {
		return err
	}
	return s.cache.Invalidate(keyAddons)
}

// ResolveImage maps "name" or "name@version" to an image and one of its
// tags. Names match an image's name or label, ignoring case. Without a
// version the image's first tag is used.
func (s *Service) ResolveImage(ctx context.Context, ref string) (domain.Image, domain.ImageTag, error) {
	name, version, _ := strings.Cut(strings.TrimSpace(ref), "@")
	if name == "" {
		return domain.Image{}, domain.ImageTag{}, fmt.Errorf("image name must not be empty")
	}
	images, err := s.Images(ctx)
	if err != nil {
		return domain.Image{}, domain.ImageTag{}, fmt.Errorf("listing images: %w", err)
	}

	for _, img := range images {
		if !strings.EqualFold(img.Name, name) && !strings.EqualFold(img.Label, name) {
			continue
		}
		if len(img.Tags) == 0 {
			return img, domain.ImageTag{}, fmt.Errorf("image %q has no versions", name)
		}
		if version == "" {
			return img, img.Tags[0], nil
		}
		for _, tag := range img.Tags {
			if tag.Version == version {
				return img, tag, nil
			}
		}
		return img, domain.ImageTag{}, fmt.Errorf("image %q has no version %q: %w", name, version, domain.ErrNotFound)
	}
	return domain.Image{}, domain.ImageTag{}, fmt.Errorf("image %q: %w", name, domain.ErrNotFound)
}

// ImageTagIDs returns the create-project image selection for img and tag,
// keyed by image type.
func ImageTagIDs(img domain.Image, tag domain.ImageTag) map[string]string {
	key := img.Type
	if key == "" {
		key = img.Name
	}
	return map[string]string{key: tag.ID}
}

// FindAddon looks an add-on up by id or name, and a plan by id or name.
// An empty plan selects the add-on's first plan.
func (s *Service) FindAddon(ctx context.Context, addon, plan string) (domain.AvailableAddon, domain.AddonPlan, error) {
	addons, err := s.Addons(ctx)
	if err != nil {
		return domain.AvailableAddon{}, domain.AddonPlan{}, fmt.Errorf("listing add-ons: %w", err)
	}
	for _, a := range addons {
		if a.ID != addon && !strings.EqualFold(a.Name, addon) {
			continue
		}
		if len(a.Plans) == 0 {
			return a, domain.AddonPlan{}, fmt.Errorf("add-on %q has no plans", a.Name)
		}
		if plan == "" {
			return a, a.Plans[0], nil
		}
		for _, p := range a.Plans {
			if p.ID == plan || strings.EqualFold(p.Name, plan) {
				return a, p, nil
			}
		}
		return a, domain.AddonPlan{}, fmt.Errorf("add-on %q has no plan %q: %w", a.Name, plan, domain.ErrNotFound)
	}
	return domain.AvailableAddon{}, domain.AddonPlan{}, fmt.Errorf("add-on %q: %w", addon, domain.ErrNotFound)
}
