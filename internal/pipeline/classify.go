package pipeline

import (
	"context"
	"errors"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// Classify wraps a pipeline error in a ClassifiedError whose category picks
// the CLI exit code. Already classified errors and nil pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := ferrors.AsClassified(err); ok {
		return err
	}
	var b *ferrors.ErrorBuilder
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b = ferrors.WrapError(err, ferrors.CategoryRuntime, "build canceled").Warning()
	case errors.Is(err, cerrors.ErrDuplicateRoute):
		b = ferrors.WrapError(err, ferrors.CategoryRoute, "route registry rejected the build").UserAction()
	case errors.Is(err, cerrors.ErrBrokenLink):
		b = ferrors.WrapError(err, ferrors.CategoryRoute, "broken links found").UserAction()
	case errors.Is(err, cerrors.ErrComponentNotRegistered), errors.Is(err, cerrors.ErrInvalidComponentProps):
		b = ferrors.WrapError(err, ferrors.CategoryCompile, "page body failed to compile").UserAction()
	case errors.Is(err, cerrors.ErrMalformedDocument), errors.Is(err, cerrors.ErrMissingRequiredField):
		b = ferrors.WrapError(err, ferrors.CategoryContent, "invalid document").UserAction()
	case errors.Is(err, cerrors.ErrPagesFailed):
		b = ferrors.WrapError(err, ferrors.CategoryContent, "pages failed").UserAction()
	default:
		b = ferrors.WrapError(err, ferrors.CategoryBuild, "build failed")
	}
	return b.Build()
}
