package initialize

import (
	"context"
	"errors"
	"testing"

	"github.com/giantswarm/pluginhost/internal/manifest"
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/stretchr/testify/require"
)

type stubModule struct {
	plugin.Module
	validateErr error
	name        string
}

func (s *stubModule) Name() string { return s.name }
func (s *stubModule) Validate(ctx context.Context, initCtx plugin.InitializationContext) error {
	return s.validateErr
}

func TestValidatePropagatesModuleError(t *testing.T) {
	init := Initializer{HostVersion: manifest.Version{Major: 1}}
	mod := &stubModule{name: "A", validateErr: errors.New("boom")}

	err := init.Validate(context.Background(), mod)
	require.Error(t, err)
}

func TestValidateSucceedsWhenModuleAccepts(t *testing.T) {
	init := Initializer{HostVersion: manifest.Version{Major: 1}}
	mod := &stubModule{name: "A"}

	require.NoError(t, init.Validate(context.Background(), mod))
}
