package providers

import (
	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/match"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// ProvideClassifier provides the duplicate classifier.
func ProvideClassifier(i do.Injector) (*match.Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := match.DefaultOptions()
	if cfg.Match.FuzzyThreshold > 0 {
		opts.FuzzyThreshold = cfg.Match.FuzzyThreshold
	}

	return match.NewClassifier(storeHandle.Store, log.Logger, opts), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	classifier := do.MustInvoke[*match.Classifier](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, classifier, log.Logger), nil
}

// ProvideImportService provides the bulk import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, books, log.Logger), nil
}

// ProvideTemplateService provides the import template service.
func ProvideTemplateService(i do.Injector) (*service.TemplateService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTemplateService(storeHandle.Store, log.Logger), nil
}
