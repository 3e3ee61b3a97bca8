package runner

import (
	"github.com/docshrink/docshrink/internal/engine"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// BuildContainer creates a new DI container with all dependencies registered.
// Dependencies are lazily initialized when first requested.
func BuildContainer(logger *zap.Logger, fs afero.Fs) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, fs)
	do.ProvideValue[SinkFactory](injector, BuildSink)

	do.Provide(injector, func(i do.Injector) (*engine.Registry, error) {
		return BuildRegistry(), nil
	})

	do.Provide(injector, func(i do.Injector) (*engine.Rewriter, error) {
		log := do.MustInvoke[*zap.Logger](i)
		return engine.NewRewriter(
			log.Named("rewriter"),
			engine.WithFs(do.MustInvoke[afero.Fs](i)),
			engine.WithRegistry(do.MustInvoke[*engine.Registry](i)),
		), nil
	})

	return injector
}

// BuildRegistry creates a registry with every supported container kind.
func BuildRegistry() *engine.Registry {
	registry := engine.NewRegistry()
	registry.Register(engine.WordPackage)
	registry.Register(engine.SlidePackage)
	return registry
}
