package helper

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
)

// SlugChecker reports whether a slug is already taken by a row other than excludeID.
type SlugChecker interface {
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

func GenerateUniqueSessionSlug(ctx context.Context, checker SlugChecker, title string, excludeID uint) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "session"
	}
	result := base
	i := 1

	for {
		exists, err := checker.SlugExists(ctx, result, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		result = fmt.Sprintf("%s-%d", base, i)
		i++
	}

	return result, nil
}
