package handlerstests

import "testing"

import "github.com/lapis-ps/paramserver/pkg/ferrors"
import "github.com/lapis-ps/paramserver/pkg/handlers"


/*
	TestRegistryRoundTrip covers Q8 for the built-in identifiers: SGD and
	AdaGrad each resolve to a non-nil handler, and the freshly created SGD
	handler accepts Setup. The unknown-identifier half of scenario 6 is
	TestRegistryUnknownIdentifierIsConfigError below.
*/

func TestRegistryRoundTrip(t *testing.T) {
	registry := handlers.NewRegistry()

	sgd, err := registry.Create(handlers.SGDName)
	if err != nil { t.Fatalf("expected SGD to be registered, got %s", err.Error()) }
	if sgd == nil { t.Fatalf("expected a non-nil handler for SGD") }

	adagrad, err := registry.Create(handlers.AdaGradName)
	if err != nil { t.Fatalf("expected AdaGrad to be registered, got %s", err.Error()) }
	if adagrad == nil { t.Fatalf("expected a non-nil handler for AdaGrad") }

	if setupErr := sgd.Setup(handlers.HandlerConfig{LearningRate: 0.1}); setupErr != nil {
		t.Errorf("expected a freshly created SGD handler to accept Setup, got %s", setupErr.Error())
	}
}

func TestRegistryUnknownIdentifierIsConfigError(t *testing.T) {
	registry := handlers.NewRegistry()

	_, err := registry.Create("NoSuchHandler")
	t.Logf("unknown identifier error: %v", err)
	if err == nil { t.Fatalf("expected an unknown identifier to fail") }
	if _, ok := err.(*ferrors.ConfigError); !ok {
		t.Errorf("expected a *ferrors.ConfigError, got %T", err)
	}
}

func TestRegistryCustomRegistration(t *testing.T) {
	registry := handlers.NewRegistry()

	registry.Register("Echo", handlers.NewSGDHandler)

	h, err := registry.Create("Echo")
	if err != nil { t.Fatalf("expected custom registration to round-trip, got %s", err.Error()) }
	if h == nil { t.Fatalf("expected a non-nil handler") }
}
