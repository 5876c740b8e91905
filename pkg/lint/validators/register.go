package validators

import (
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/lint/urlcheck"
)

// defaultURL is the url validator registered with the default registry.
//
//nolint:gochecknoglobals // shared so plug-in checkers can be added at start-up
var defaultURL = NewURLValidator()

// RegisterAll registers all built-in validators with the given registry.
// The url validator is created fresh so registries do not share caches.
func RegisterAll(registry *lint.Registry) {
	registerWith(registry, NewURLValidator())
}

func registerWith(registry *lint.Registry, url *URLValidator) {
	registry.Register(NewEmptyTargetValidator())
	registry.Register(NewFileTargetValidator())
	registry.Register(NewAnchorValidator())
	registry.Register(NewCrossFileAnchorValidator())
	registry.Register(NewMemberValidator())
	registry.Register(url)
	registry.Register(NewReferenceLabelValidator())
	registry.Register(NewAnchorDeclarationValidator())
	registry.Register(NewTaskMarkerValidator())
}

// RegisterURLChecker adds a plug-in checker to the default url validator.
// Plug-ins are consulted before the built-in HTTP and dial checks.
func RegisterURLChecker(c urlcheck.Checker) {
	defaultURL.RegisterChecker(c)
}

// Info describes the validators of registry for configuration templates.
func Info(registry *lint.Registry) []config.ValidatorInfo {
	list := registry.Validators()
	infos := make([]config.ValidatorInfo, 0, len(list))
	for _, v := range list {
		infos = append(infos, config.ValidatorInfo{
			Name:        v.Name(),
			Description: v.Description(),
			Enabled:     v.DefaultEnabled(),
			Severity:    v.DefaultSeverity(),
		})
	}
	return infos
}

// init registers all built-in validators with the default registry.
//
//nolint:gochecknoinits // Init is intentional for automatic validator registration
func init() {
	registerWith(lint.DefaultRegistry, defaultURL)
	config.DefaultValidatorInfoProvider = func() []config.ValidatorInfo {
		return Info(lint.DefaultRegistry)
	}
}
